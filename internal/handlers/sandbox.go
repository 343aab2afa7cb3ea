package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"persona-tutor/internal/middleware"
	"persona-tutor/internal/models"
)

type snippetController interface {
	Snippets(id uuid.UUID, messageIndex int) ([]models.Snippet, error)
	EditSnippet(id uuid.UUID, key models.SnippetKey, code string) (*models.Snippet, error)
	RunSnippet(ctx context.Context, id uuid.UUID, key models.SnippetKey, code *string) (*models.RunSnippetResponse, error)
}

type SandboxHandler struct {
	ctrl snippetController
}

func NewSandboxHandler(ctrl snippetController) *SandboxHandler {
	return &SandboxHandler{ctrl: ctrl}
}

func (h *SandboxHandler) List(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid message index", r))
		return
	}

	snippets, err := h.ctrl.Snippets(middleware.GetSessionID(r.Context()), index)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snippets": snippets})
}

func (h *SandboxHandler) Edit(w http.ResponseWriter, r *http.Request) {
	key, ok := snippetKeyFromRequest(w, r)
	if !ok {
		return
	}

	var req models.EditSnippetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snippet, err := h.ctrl.EditSnippet(middleware.GetSessionID(r.Context()), key, req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// Run accepts an empty body, which runs the widget's current text.
func (h *SandboxHandler) Run(w http.ResponseWriter, r *http.Request) {
	key, ok := snippetKeyFromRequest(w, r)
	if !ok {
		return
	}

	var req models.RunSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.ctrl.RunSnippet(r.Context(), middleware.GetSessionID(r.Context()), key, req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
