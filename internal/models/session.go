package models

import (
	"strings"

	"github.com/google/uuid"
)

type Page string

const (
	PageHome  Page = "home"
	PageTutor Page = "tutor"
	PageQuiz  Page = "quiz"
)

var Pages = []Page{PageHome, PageTutor, PageQuiz}

func ParsePage(raw string) (Page, bool) {
	for _, p := range Pages {
		if strings.EqualFold(strings.TrimSpace(raw), string(p)) {
			return p, true
		}
	}
	return "", false
}

type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	Page      Page      `json:"page"`
}

type SelectPageRequest struct {
	Page string `json:"page"`
}

// SessionView is everything a client needs to redraw.
type SessionView struct {
	SessionID      uuid.UUID       `json:"session_id"`
	Page           Page            `json:"page"`
	Messages       []MessageView   `json:"messages"`
	Quiz           *QuizState      `json:"quiz"`
	LastEvaluation *QuizEvaluation `json:"last_evaluation,omitempty"`
}

// HomeContent is the static Home page.
type HomeContent struct {
	Title    string   `json:"title"`
	Greeting string   `json:"greeting"`
	Features []string `json:"features"`
	Steps    []string `json:"steps"`
}

type OptionsResponse struct {
	Pages    []Page    `json:"pages"`
	Subjects []Subject `json:"subjects"`
	Levels   []Level   `json:"levels"`
	Styles   []Style   `json:"styles"`
	Model    string    `json:"model"`
	Provider string    `json:"provider"`
}
