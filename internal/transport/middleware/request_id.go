package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/nvanschaik/fishtracker-backend/pkg/ctxutil"
)

// RequestIDHeader carries the request ID on both the request and the response.
const RequestIDHeader = "X-Request-Id"

// RequestID reuses an incoming request ID or generates a fresh UUID, stores
// it in the request context, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithRequestID(r.Context(), id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
