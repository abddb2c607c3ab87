package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nvanschaik/fishtracker-backend/pkg/envelope"
)

type chatService interface {
	Chat(ctx context.Context, deviceIdentifier, userMessage string) (string, error)
}

// ChatHandler serves the conversational assistant endpoint.
type ChatHandler struct {
	log  *slog.Logger
	chat chatService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(logger *slog.Logger, chat chatService) *ChatHandler {
	return &ChatHandler{log: logger, chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /api/devices/{deviceId}/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.chat.Chat(r.Context(), r.PathValue("deviceId"), req.Message)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	envelope.WriteSuccess(w, http.StatusOK, chatResponse{Response: reply},
		"Successfully processed chat request")
}
