package models

import "fmt"

// SnippetKey addresses one code widget: the message it belongs to and the
// position of the block inside that message.
type SnippetKey struct {
	MessageIndex int `json:"message_index"`
	SnippetIndex int `json:"snippet_index"`
}

func (k SnippetKey) String() string {
	return fmt.Sprintf("%d/%d", k.MessageIndex, k.SnippetIndex)
}

// Snippet is an editable, runnable code widget.
type Snippet struct {
	SnippetKey
	Label    string `json:"label"`
	Original string `json:"original"`
	Code     string `json:"code"`
	Edited   bool   `json:"edited"`
}

type EditSnippetRequest struct {
	Code string `json:"code"`
}

// RunSnippetRequest runs Code when set, otherwise the widget's current text.
type RunSnippetRequest struct {
	Code *string `json:"code,omitempty"`
}

type RunSnippetResponse struct {
	SnippetKey
	Output string `json:"output"`
}
