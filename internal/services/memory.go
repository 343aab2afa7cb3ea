package services

import (
	"strings"
	"sync"
)

const (
	userPrefix      = "User: "
	assistantPrefix = "Assistant: "
)

// Turn is one recorded exchange.
type Turn struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Memory is what the completion client needs from a conversation store.
type Memory interface {
	Append(input, output string)
	Render() string
}

// ConversationMemory accumulates turns in insertion order. It has no size
// bound; Clear is the only way to shrink it.
type ConversationMemory struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

func (m *ConversationMemory) Append(input, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{Input: input, Output: output})
}

// Render returns "User: …\nAssistant: …\n" per turn, or "" when empty.
func (m *ConversationMemory) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	for _, t := range m.turns {
		b.WriteString(userPrefix)
		b.WriteString(t.Input)
		b.WriteString("\n")
		b.WriteString(assistantPrefix)
		b.WriteString(t.Output)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Turns returns a copy of the stored turns.
func (m *ConversationMemory) Turns() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// ParseHistory recovers turns from Render output. Lines that do not start a
// new "User:" or "Assistant:" entry are continuation lines of the previous
// entry, so multi-line content survives unless a line itself begins with one
// of the prefixes.
func ParseHistory(rendered string) []Turn {
	var (
		turns   []Turn
		current *Turn
		inUser  bool
	)

	lines := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, userPrefix):
			turns = append(turns, Turn{Input: strings.TrimPrefix(line, userPrefix)})
			current = &turns[len(turns)-1]
			inUser = true
		case strings.HasPrefix(line, assistantPrefix) && current != nil:
			current.Output = strings.TrimPrefix(line, assistantPrefix)
			inUser = false
		case current != nil:
			if inUser {
				current.Input += "\n" + line
			} else {
				current.Output += "\n" + line
			}
		}
	}
	return turns
}
