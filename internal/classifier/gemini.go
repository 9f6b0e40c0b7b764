package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Gemini classifies messages with Gemini's native JSON mode
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini classifier
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger := slog.Default().With("component", "gemini", "model", model)
	logger.Info("gemini classifier initialized")
	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) Name() string { return BackendGemini }

func (g *Gemini) Close() error { return nil }

// Classify sends one message and parses the JSON verdict
func (g *Gemini) Classify(ctx context.Context, text string) (Result, error) {
	temperature := float32(0.1)
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(systemPrompt)[0],
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   50,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), genConfig)
	if err != nil {
		return Result{}, fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Result{}, fmt.Errorf("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Result{}, fmt.Errorf("gemini returned no content parts")
	}

	jsonText := candidate.Content.Parts[0].Text
	g.logger.Debug("gemini verdict", "response_length", len(jsonText))
	return parseVerdict(jsonText)
}
