package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"persona-tutor/internal/middleware"
	"persona-tutor/internal/models"
)

type quizController interface {
	Quiz(id uuid.UUID) (*models.QuizResponse, error)
	GenerateQuiz(ctx context.Context, id uuid.UUID, apiKey string, profile models.Profile, topic string) (*models.QuizState, error)
	SubmitAnswers(ctx context.Context, id uuid.UUID, apiKey string, answers string) (*models.QuizEvaluation, error)
}

type QuizHandler struct {
	ctrl quizController
}

func NewQuizHandler(ctrl quizController) *QuizHandler {
	return &QuizHandler{ctrl: ctrl}
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ctrl.Quiz(middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, ok := parseProfile(w, r, req.Profile)
	if !ok {
		return
	}

	quiz, err := h.ctrl.GenerateQuiz(r.Context(), middleware.GetSessionID(r.Context()), apiKeyFromRequest(r), profile, req.Topic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.QuizResponse{Quiz: quiz})
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	eval, err := h.ctrl.SubmitAnswers(r.Context(), middleware.GetSessionID(r.Context()), apiKeyFromRequest(r), req.Answers)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eval)
}
