package models

import "github.com/google/uuid"

// WebSocket message types
const (
	EventPageChanged    = "page_changed"
	EventMessageAdded   = "message_added"
	EventHistoryCleared = "history_cleared"
	EventQuizUpdated    = "quiz_updated"
	EventQuizEvaluated  = "quiz_evaluated"
	EventSnippetRan     = "snippet_ran"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type SessionEvent struct {
	SessionID uuid.UUID    `json:"session_id"`
	Page      Page         `json:"page,omitempty"`
	Message   *MessageView `json:"message,omitempty"`
	Quiz      *QuizState   `json:"quiz,omitempty"`
	Snippet   *SnippetKey  `json:"snippet,omitempty"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
