package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"persona-tutor/internal/middleware"
	"persona-tutor/internal/models"
	"persona-tutor/internal/session"
)

type sessionController interface {
	CreateSession() *session.Session
	View(id uuid.UUID) (*models.SessionView, error)
	SelectPage(id uuid.UUID, page models.Page) error
	ClearHistory(id uuid.UUID) error
}

type tokenIssuer interface {
	IssueToken(sessionID uuid.UUID) (string, error)
}

type SessionHandler struct {
	ctrl   sessionController
	tokens tokenIssuer
}

func NewSessionHandler(ctrl sessionController, tokens tokenIssuer) *SessionHandler {
	return &SessionHandler{ctrl: ctrl, tokens: tokens}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.ctrl.CreateSession()

	token, err := h.tokens.IssueToken(sess.ID)
	if err != nil {
		log.Printf("Failed to issue token for session %s: %v", sess.ID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		Page:      sess.Page(),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.ctrl.View(middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) SelectPage(w http.ResponseWriter, r *http.Request) {
	var req models.SelectPageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	page, ok := models.ParsePage(req.Page)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Unknown page",
			map[string]string{"page": "must be one of: home, tutor, quiz"}, r))
		return
	}

	id := middleware.GetSessionID(r.Context())
	if err := h.ctrl.SelectPage(id, page); err != nil {
		handleServiceError(w, r, err)
		return
	}

	view, err := h.ctrl.View(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.ClearHistory(middleware.GetSessionID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}
