package translate

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Compile-time check.
var _ Translator = (*GeminiTranslator)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiTranslator is a thin wrapper around the official genai client.
type GeminiTranslator struct {
	cli         *genai.Client
	model       string
	temperature float32
}

// NewGeminiTranslator creates a client for the Gemini API. An empty apiKey
// lets the genai client fall back to GOOGLE_API_KEY / GEMINI_API_KEY.
func NewGeminiTranslator(ctx context.Context, apiKey, model string, temperature float32) (*GeminiTranslator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiTranslator{cli: cli, model: model, temperature: temperature}, nil
}

func (g *GeminiTranslator) Name() string { return "gemini:" + g.model }

// Translate sends the conversion prompt and strips the fenced reply.
func (g *GeminiTranslator) Translate(ctx context.Context, req Request) (string, error) {
	temperature := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: BuildPrompt(req)}}}},
		&genai.GenerateContentConfig{Temperature: &temperature},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return CleanResponse(sb.String()), nil
}
