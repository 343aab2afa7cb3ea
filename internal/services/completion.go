package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tmc/langchaingo/llms"
)

// CallOptions are supplied per call; nothing here is cached.
type CallOptions struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Provider performs one remote completion and returns the provider's own
// response envelope. Turning that envelope into text is NormalizeReply's job.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts CallOptions) (any, error)
}

// CompletionClient wraps a single outbound call per request. It does not
// retry and adds no timeout of its own.
type CompletionClient struct {
	provider Provider
}

func NewCompletionClient(provider Provider) *CompletionClient {
	return &CompletionClient{provider: provider}
}

func (c *CompletionClient) ProviderName() string {
	return c.provider.Name()
}

// Complete sends prompt without touching any conversation memory.
func (c *CompletionClient) Complete(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return "", &MissingCredentialError{}
	}

	envelope, err := c.provider.Generate(ctx, prompt, opts)
	if err != nil {
		log.Printf("%s completion error (model=%s): %v", c.provider.Name(), opts.Model, err)
		return "", &ProviderError{Provider: c.provider.Name(), Err: err}
	}

	text, err := NormalizeReply(envelope)
	if err != nil {
		log.Printf("WARNING: %s returned an unusable reply: %v", c.provider.Name(), err)
		return "", &ProviderError{Provider: c.provider.Name(), Err: err}
	}
	return text, nil
}

// CompleteWithHistory renders the memory into the prompt via render and
// records (input, reply) only when a reply was obtained.
func (c *CompletionClient) CompleteWithHistory(ctx context.Context, mem Memory, input string, render func(history string) string, opts CallOptions) (string, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return "", &MissingCredentialError{}
	}

	text, err := c.Complete(ctx, render(mem.Render()), opts)
	if err != nil {
		return "", err
	}

	mem.Append(input, text)
	return text, nil
}

var (
	errEmptyReply   = errors.New("reply contained no text")
	errUnknownReply = errors.New("unrecognized reply envelope")
)

// NormalizeReply extracts generated text from a provider envelope.
//
// Accepted envelopes:
//   - string: returned as is
//   - map[string]any / map[string]string: mapping-like replies; the "text"
//     field is used, falling back to "content"
//   - *llms.ContentResponse: attribute-style reply; the first choice's Content
//   - *genai.GenerateContentResponse: all text parts of all candidates, joined
//
// Anything else, and any envelope whose text is empty, is an error.
func NormalizeReply(envelope any) (string, error) {
	var text string

	switch v := envelope.(type) {
	case string:
		text = v
	case map[string]string:
		text = v["text"]
		if text == "" {
			text = v["content"]
		}
	case map[string]any:
		for _, key := range []string{"text", "content"} {
			if s, ok := v[key].(string); ok && s != "" {
				text = s
				break
			}
		}
	case *llms.ContentResponse:
		if v != nil && len(v.Choices) > 0 && v.Choices[0] != nil {
			text = v.Choices[0].Content
		}
	case *genai.GenerateContentResponse:
		if v != nil {
			text = extractText(v)
		}
	default:
		return "", fmt.Errorf("%w: %T", errUnknownReply, envelope)
	}

	if strings.TrimSpace(text) == "" {
		return "", errEmptyReply
	}
	return text, nil
}

// Endpoints overrides where each provider is reached. Empty values keep the
// provider's public endpoint.
type Endpoints struct {
	GroqBaseURL    string
	GeminiEndpoint string
}

// NewProvider returns the provider registered under name.
func NewProvider(name string, endpoints Endpoints) (Provider, error) {
	switch strings.ToLower(name) {
	case "groq":
		return NewGroqProvider(endpoints.GroqBaseURL), nil
	case "gemini":
		return NewGeminiProvider(endpoints.GeminiEndpoint), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", name)
	}
}
