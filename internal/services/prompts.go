package services

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"persona-tutor/internal/models"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptTemplates holds the three fixed instruction templates.
type PromptTemplates struct {
	Conversation   string `yaml:"conversation"`
	QuizGeneration string `yaml:"quiz_generation"`
	QuizEvaluation string `yaml:"quiz_evaluation"`
}

// PromptBuilder fills templates by plain substitution. Field contents are
// inserted as given; nothing is escaped.
type PromptBuilder struct {
	templates PromptTemplates
}

// NewPromptBuilder loads templates from path, or the embedded defaults when
// path is empty.
func NewPromptBuilder(path string) (*PromptBuilder, error) {
	data := defaultPrompts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
		data = b
	}
	return parsePromptTemplates(data)
}

func parsePromptTemplates(data []byte) (*PromptBuilder, error) {
	var t PromptTemplates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}

	missing := []string{}
	if strings.TrimSpace(t.Conversation) == "" {
		missing = append(missing, "conversation")
	}
	if strings.TrimSpace(t.QuizGeneration) == "" {
		missing = append(missing, "quiz_generation")
	}
	if strings.TrimSpace(t.QuizEvaluation) == "" {
		missing = append(missing, "quiz_evaluation")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("prompts missing templates: %s", strings.Join(missing, ", "))
	}

	return &PromptBuilder{templates: t}, nil
}

// Conversation returns a render function for the memory-backed call: the
// history is only known once the client reads the memory.
func (b *PromptBuilder) Conversation(profile models.Profile, input string) func(history string) string {
	return func(history string) string {
		return fill(b.templates.Conversation,
			"{subject}", string(profile.Subject),
			"{level}", string(profile.Level),
			"{style}", string(profile.Style),
			"{history}", history,
			"{input}", input,
		)
	}
}

func (b *PromptBuilder) QuizGeneration(profile models.Profile, topic string) string {
	return fill(b.templates.QuizGeneration,
		"{count}", strconv.Itoa(models.QuizQuestionCount),
		"{topic}", topic,
		"{level}", string(profile.Level),
		"{subject}", string(profile.Subject),
	)
}

func (b *PromptBuilder) QuizEvaluation(quiz models.QuizState, answers string) string {
	return fill(b.templates.QuizEvaluation,
		"{topic}", quiz.LastTopic,
		"{quiz}", quiz.QuizBody,
		"{answers}", answers,
	)
}

// fill substitutes all pairs in one pass, so text inserted for one
// placeholder is never expanded again.
func fill(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}
