package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"persona-tutor/internal/middleware"
	"persona-tutor/internal/models"
)

type chatController interface {
	Chat(ctx context.Context, id uuid.UUID, apiKey string, profile models.Profile, input string) (*models.ChatResponse, error)
}

type ChatHandler struct {
	ctrl chatController
}

func NewChatHandler(ctrl chatController) *ChatHandler {
	return &ChatHandler{ctrl: ctrl}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, ok := parseProfile(w, r, req.Profile)
	if !ok {
		return
	}

	resp, err := h.ctrl.Chat(r.Context(), middleware.GetSessionID(r.Context()), apiKeyFromRequest(r), profile, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
