package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"persona-tutor/internal/models"
	"persona-tutor/internal/services"
)

// Session is the state of one browser tab: the selected page, the message
// log with its conversation memory, the last quiz and any snippet edits.
//
// busy serializes interactions; state guards the fields below it so redraws
// can read while an interaction waits on the model.
type Session struct {
	ID uuid.UUID

	busy     sync.Mutex
	lastSeen atomic.Int64

	state    sync.RWMutex
	page     models.Page
	messages []models.Message
	memory   *services.ConversationMemory
	quiz     *models.QuizState
	lastEval *models.QuizEvaluation
	edits    map[models.SnippetKey]string
}

func newSession(now time.Time) *Session {
	s := &Session{
		ID:     uuid.New(),
		page:   models.PageHome,
		memory: services.NewConversationMemory(),
		edits:  make(map[models.SnippetKey]string),
	}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// tryBegin claims the session for one interaction. The caller must call the
// returned func when done.
func (s *Session) tryBegin() (func(), error) {
	if !s.busy.TryLock() {
		return nil, &services.ConflictError{Message: "Another request for this session is still in progress"}
	}
	return s.busy.Unlock, nil
}

func (s *Session) Page() models.Page {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.page
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []models.Message {
	s.state.RLock()
	defer s.state.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Memory is the conversation memory backing the tutor chat.
func (s *Session) Memory() *services.ConversationMemory {
	return s.memory
}

// Quiz returns a copy of the stored quiz, or nil when none was generated.
func (s *Session) Quiz() *models.QuizState {
	s.state.RLock()
	defer s.state.RUnlock()
	if s.quiz == nil {
		return nil
	}
	q := *s.quiz
	return &q
}

func (s *Session) appendMessage(role models.Role, content string) int {
	s.state.Lock()
	defer s.state.Unlock()
	s.messages = append(s.messages, models.Message{Role: role, Content: content})
	return len(s.messages) - 1
}

func (s *Session) message(index int) (models.Message, bool) {
	s.state.RLock()
	defer s.state.RUnlock()
	if index < 0 || index >= len(s.messages) {
		return models.Message{}, false
	}
	return s.messages[index], true
}
