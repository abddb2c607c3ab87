package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
	"github.com/nvanschaik/fishtracker-backend/internal/service/chat"
	"github.com/nvanschaik/fishtracker-backend/internal/service/sighting"
	"github.com/nvanschaik/fishtracker-backend/pkg/ctxutil"
	"github.com/nvanschaik/fishtracker-backend/pkg/envelope"
)

// fieldErrorDTO is a wire-safe projection of one validation failure.
type fieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondError translates a service error into an envelope. Unrecognized
// errors become an opaque 500; the detail goes to the log only.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		fields := make([]fieldErrorDTO, len(ve.Errors))
		for i, fe := range ve.Errors {
			fields[i] = fieldErrorDTO{Field: fe.Field, Message: fe.Message}
		}
		envelope.WriteError(w, http.StatusBadRequest, fields, "Invalid input")
		return
	}

	switch {
	case errors.Is(err, sighting.ErrFishUnknown):
		envelope.WriteError(w, http.StatusNotFound, "fish not found", "Fish is not in the catalog")
	case errors.Is(err, chat.ErrNoSightingData):
		envelope.WriteError(w, http.StatusNotFound, "no fish data found for this device", "No fish data available")
	case errors.Is(err, chat.ErrProviderMisconfigured):
		envelope.WriteError(w, http.StatusServiceUnavailable, "assistant not configured", "Assistant is not available")
	case errors.Is(err, chat.ErrProviderUnavailable), errors.Is(err, chat.ErrAssistantEmpty):
		envelope.WriteError(w, http.StatusBadGateway, "assistant unavailable", "Failed to process chat request")
	case errors.Is(err, domain.ErrNotFound):
		envelope.WriteError(w, http.StatusNotFound, "not found", "Resource not found")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		envelope.WriteError(w, http.StatusConflict, "already exists", "Resource already exists")
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			slog.String("error", err.Error()),
		)
		envelope.WriteError(w, http.StatusInternalServerError, "internal error", "Something went wrong")
	}
}

// decodeJSON reads a JSON body into dst, answering 400 on malformed input.
// Bodies are capped at 10 MiB; registration payloads carry inline images.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		envelope.WriteError(w, http.StatusBadRequest, "malformed JSON body", "Invalid input")
		return false
	}
	return true
}
