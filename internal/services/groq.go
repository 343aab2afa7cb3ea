package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GroqProvider talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewGroqProvider(baseURL string) *GroqProvider {
	return &GroqProvider{baseURL: baseURL, httpClient: http.DefaultClient}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) Generate(ctx context.Context, prompt string, opts CallOptions) (any, error) {
	llm, err := openai.New(
		openai.WithToken(opts.APIKey),
		openai.WithModel(opts.Model),
		openai.WithBaseURL(p.baseURL),
		openai.WithHTTPClient(p.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq client: %w", err)
	}

	resp, err := llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(opts.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("Groq API error: %w", err)
	}
	return resp, nil
}
