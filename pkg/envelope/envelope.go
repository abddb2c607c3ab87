// Package envelope defines the uniform JSON response contract: every
// endpoint answers with either a success envelope carrying data or an
// error envelope carrying a safe detail. Internal error detail is for
// logs, never for the wire.
package envelope

import (
	"encoding/json"
	"net/http"
)

// Success is the body of every 2xx response.
type Success struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Success bool   `json:"success"`
	Error   any    `json:"error"`
	Message string `json:"message"`
}

// WriteSuccess writes a success envelope with the given status code.
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Success{Success: true, Data: data, Message: message})
}

// WriteError writes an error envelope with the given status code. detail
// must already be safe to expose.
func WriteError(w http.ResponseWriter, status int, detail any, message string) {
	write(w, status, Error{Success: false, Error: detail, Message: message})
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
