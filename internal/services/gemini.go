package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google's Gemini API. A client is opened per call
// because the API key arrives with each request.
type GeminiProvider struct {
	endpoint string
}

// NewGeminiProvider uses the public endpoint unless endpoint is set.
func NewGeminiProvider(endpoint string) *GeminiProvider {
	return &GeminiProvider{endpoint: endpoint}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) clientOptions(apiKey string) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	return opts
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts CallOptions) (any, error) {
	client, err := genai.NewClient(ctx, p.clientOptions(opts.APIKey)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(float32(opts.Temperature))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	return resp, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
