package models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the session's message log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string         `json:"message"`
	Profile ProfileRequest `json:"profile"`
}

// ChatResponse carries the assistant reply and the widgets derived from it.
type ChatResponse struct {
	Reply        string    `json:"reply"`
	MessageIndex int       `json:"message_index"`
	Snippets     []Snippet `json:"snippets"`
}

// MessageView is a message as rendered on redraw, with its snippet widgets
// re-derived from the stored content.
type MessageView struct {
	Index    int       `json:"index"`
	Role     Role      `json:"role"`
	Content  string    `json:"content"`
	Snippets []Snippet `json:"snippets,omitempty"`
}
