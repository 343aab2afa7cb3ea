package session

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"persona-tutor/internal/models"
	"persona-tutor/internal/sandbox"
	"persona-tutor/internal/services"
)

const evaluationHeading = "Evaluation Results"

// Completer is the part of the completion client the controller uses.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts services.CallOptions) (string, error)
	CompleteWithHistory(ctx context.Context, mem services.Memory, input string, render func(history string) string, opts services.CallOptions) (string, error)
	ProviderName() string
}

// Notifier is told about every state change so open clients can redraw.
type Notifier interface {
	Notify(sessionID uuid.UUID, msg models.WSMessage)
}

type Options struct {
	Model       string
	Temperature float64
	// DefaultAPIKey is used when a request carries no key of its own.
	DefaultAPIKey string
	// Language is the fence tag of runnable snippets.
	Language string
}

// Controller runs page actions against sessions. Every action completes
// before it returns; a second action on a busy session is refused.
type Controller struct {
	store     *Store
	llm       Completer
	prompts   *services.PromptBuilder
	runner    sandbox.Runner
	extractor *sandbox.Extractor
	notifier  Notifier
	opts      Options
}

func NewController(store *Store, llm Completer, prompts *services.PromptBuilder, runner sandbox.Runner, notifier Notifier, opts Options) *Controller {
	if opts.Language == "" {
		opts.Language = "python"
	}
	return &Controller{
		store:     store,
		llm:       llm,
		prompts:   prompts,
		runner:    runner,
		extractor: sandbox.NewExtractor(),
		notifier:  notifier,
		opts:      opts,
	}
}

func (c *Controller) Model() string { return c.opts.Model }

func (c *Controller) ProviderName() string { return c.llm.ProviderName() }

// CreateSession starts a session on the Home page.
func (c *Controller) CreateSession() *Session {
	sess := c.store.Create()
	log.Printf("Session %s created", sess.ID)
	return sess
}

func (c *Controller) SelectPage(id uuid.UUID, page models.Page) error {
	sess, done, err := c.begin(id)
	if err != nil {
		return err
	}
	defer done()

	sess.state.Lock()
	sess.page = page
	sess.state.Unlock()

	c.notify(id, models.EventPageChanged, models.SessionEvent{SessionID: id, Page: page})
	return nil
}

// Chat records the user message, asks the tutor and records the reply. When
// the call fails only the user message remains in the log.
func (c *Controller) Chat(ctx context.Context, id uuid.UUID, apiKey string, profile models.Profile, input string) (*models.ChatResponse, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &services.ValidationError{
			Message: "Message cannot be empty",
			Fields:  map[string]string{"message": "required"},
		}
	}

	sess, done, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	userIdx := sess.appendMessage(models.RoleUser, input)
	c.notify(id, models.EventMessageAdded, models.SessionEvent{
		SessionID: id,
		Message:   &models.MessageView{Index: userIdx, Role: models.RoleUser, Content: input},
	})

	reply, err := c.llm.CompleteWithHistory(ctx, sess.memory, input, c.prompts.Conversation(profile, input), c.callOptions(apiKey))
	if err != nil {
		return nil, err
	}

	idx := sess.appendMessage(models.RoleAssistant, reply)
	snippets := c.snippets(idx, reply, nil)

	c.notify(id, models.EventMessageAdded, models.SessionEvent{
		SessionID: id,
		Message:   &models.MessageView{Index: idx, Role: models.RoleAssistant, Content: reply, Snippets: snippets},
	})

	return &models.ChatResponse{Reply: reply, MessageIndex: idx, Snippets: snippets}, nil
}

// ClearHistory empties the message log, the memory and the snippet edits
// together.
func (c *Controller) ClearHistory(id uuid.UUID) error {
	sess, done, err := c.begin(id)
	if err != nil {
		return err
	}
	defer done()

	sess.state.Lock()
	sess.messages = nil
	sess.edits = make(map[models.SnippetKey]string)
	sess.memory.Clear()
	sess.state.Unlock()

	c.notify(id, models.EventHistoryCleared, models.SessionEvent{SessionID: id})
	return nil
}

// GenerateQuiz replaces the stored quiz on success and leaves it untouched on
// any failure.
func (c *Controller) GenerateQuiz(ctx context.Context, id uuid.UUID, apiKey string, profile models.Profile, topic string) (*models.QuizState, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, &services.ValidationError{
			Message: "Topic cannot be empty",
			Fields:  map[string]string{"topic": "required"},
		}
	}

	sess, done, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	body, err := c.llm.Complete(ctx, c.prompts.QuizGeneration(profile, topic), c.callOptions(apiKey))
	if err != nil {
		return nil, err
	}

	quiz := models.QuizState{Topic: topic, QuizBody: body, LastTopic: topic}
	sess.state.Lock()
	sess.quiz = &quiz
	sess.lastEval = nil
	sess.state.Unlock()

	c.notify(id, models.EventQuizUpdated, models.SessionEvent{SessionID: id, Quiz: &quiz})
	return &quiz, nil
}

// SubmitAnswers grades answers against the stored quiz. The quiz itself is
// never modified.
func (c *Controller) SubmitAnswers(ctx context.Context, id uuid.UUID, apiKey string, answers string) (*models.QuizEvaluation, error) {
	sess, done, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	quiz := sess.Quiz()
	if quiz == nil {
		return nil, &services.ValidationError{Message: "Generate a quiz before submitting answers"}
	}

	text, err := c.llm.Complete(ctx, c.prompts.QuizEvaluation(*quiz, answers), c.callOptions(apiKey))
	if err != nil {
		return nil, err
	}

	eval := models.QuizEvaluation{Heading: evaluationHeading, Evaluation: text}
	sess.state.Lock()
	sess.lastEval = &eval
	sess.state.Unlock()

	c.notify(id, models.EventQuizEvaluated, models.SessionEvent{SessionID: id, Quiz: quiz})
	return &eval, nil
}

// Quiz returns the stored quiz and the last evaluation, if any.
func (c *Controller) Quiz(id uuid.UUID) (*models.QuizResponse, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	sess.state.RLock()
	defer sess.state.RUnlock()
	resp := &models.QuizResponse{}
	if sess.quiz != nil {
		q := *sess.quiz
		resp.Quiz = &q
	}
	if sess.lastEval != nil {
		e := *sess.lastEval
		resp.LastEvaluation = &e
	}
	return resp, nil
}

// Snippets lists the widgets of one message. Only assistant messages have any.
func (c *Controller) Snippets(id uuid.UUID, messageIndex int) ([]models.Snippet, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	msg, ok := sess.message(messageIndex)
	if !ok {
		return nil, &services.NotFoundError{Message: fmt.Sprintf("Message %d not found", messageIndex)}
	}
	if msg.Role != models.RoleAssistant {
		return []models.Snippet{}, nil
	}

	sess.state.RLock()
	defer sess.state.RUnlock()
	return c.snippets(messageIndex, msg.Content, sess.edits), nil
}

// EditSnippet stores code as the widget's current text. The message content
// is not changed.
func (c *Controller) EditSnippet(id uuid.UUID, key models.SnippetKey, code string) (*models.Snippet, error) {
	sess, done, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	snippet, err := c.lookupSnippet(sess, key)
	if err != nil {
		return nil, err
	}

	sess.state.Lock()
	sess.edits[key] = code
	sess.state.Unlock()

	snippet.Code = code
	snippet.Edited = code != snippet.Original
	return snippet, nil
}

// RunSnippet executes code when given, otherwise the widget's current text.
func (c *Controller) RunSnippet(ctx context.Context, id uuid.UUID, key models.SnippetKey, code *string) (*models.RunSnippetResponse, error) {
	sess, done, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	snippet, err := c.lookupSnippet(sess, key)
	if err != nil {
		return nil, err
	}

	source := snippet.Code
	if code != nil {
		source = *code
	}

	output, err := c.runner.Run(ctx, source)
	if err != nil {
		log.Printf("Snippet %s in session %s failed: %v", key, id, err)
		return nil, err
	}

	c.notify(id, models.EventSnippetRan, models.SessionEvent{SessionID: id, Snippet: &key})
	return &models.RunSnippetResponse{SnippetKey: key, Output: output}, nil
}

// View is the full redraw payload. Snippets are re-derived from the stored
// message content.
func (c *Controller) View(id uuid.UUID) (*models.SessionView, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	sess.state.RLock()
	defer sess.state.RUnlock()

	view := &models.SessionView{
		SessionID: id,
		Page:      sess.page,
		Messages: lo.Map(sess.messages, func(m models.Message, i int) models.MessageView {
			v := models.MessageView{Index: i, Role: m.Role, Content: m.Content}
			if m.Role == models.RoleAssistant {
				v.Snippets = c.snippets(i, m.Content, sess.edits)
			}
			return v
		}),
	}
	if sess.quiz != nil {
		q := *sess.quiz
		view.Quiz = &q
	}
	if sess.lastEval != nil {
		e := *sess.lastEval
		view.LastEvaluation = &e
	}
	return view, nil
}

func (c *Controller) begin(id uuid.UUID) (*Session, func(), error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, nil, err
	}
	done, err := sess.tryBegin()
	if err != nil {
		return nil, nil, err
	}
	return sess, done, nil
}

func (c *Controller) lookupSnippet(sess *Session, key models.SnippetKey) (*models.Snippet, error) {
	msg, ok := sess.message(key.MessageIndex)
	if !ok || msg.Role != models.RoleAssistant {
		return nil, &services.NotFoundError{Message: fmt.Sprintf("Snippet %s not found", key)}
	}

	sess.state.RLock()
	snippets := c.snippets(key.MessageIndex, msg.Content, sess.edits)
	sess.state.RUnlock()

	if key.SnippetIndex < 0 || key.SnippetIndex >= len(snippets) {
		return nil, &services.NotFoundError{Message: fmt.Sprintf("Snippet %s not found", key)}
	}
	s := snippets[key.SnippetIndex]
	return &s, nil
}

// snippets builds one widget per extracted block. edits may be nil; the
// caller holds the state lock when it is not.
func (c *Controller) snippets(messageIndex int, content string, edits map[models.SnippetKey]string) []models.Snippet {
	blocks := c.extractor.Extract(content, c.opts.Language)
	return lo.Map(blocks, func(block string, i int) models.Snippet {
		key := models.SnippetKey{MessageIndex: messageIndex, SnippetIndex: i}
		code, edited := edits[key]
		if !edited {
			code = block
		}
		return models.Snippet{
			SnippetKey: key,
			Label:      fmt.Sprintf("Interactive Code %d", i+1),
			Original:   block,
			Code:       code,
			Edited:     edited && code != block,
		}
	})
}

func (c *Controller) callOptions(apiKey string) services.CallOptions {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = c.opts.DefaultAPIKey
	}
	return services.CallOptions{
		APIKey:      apiKey,
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
	}
}

func (c *Controller) notify(id uuid.UUID, eventType string, payload models.SessionEvent) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(id, models.WSMessage{Type: eventType, Payload: payload})
}
