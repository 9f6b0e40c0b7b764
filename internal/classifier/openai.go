package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// OpenAI classifies messages with a chat completion in JSON mode
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI classifier. baseURL overrides the API endpoint
// when set.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	logger := slog.Default().With("component", "openai", "model", model)
	logger.Info("openai classifier initialized")
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, logger: logger}, nil
}

func (o *OpenAI) Name() string { return BackendOpenAI }

func (o *OpenAI) Close() error { return nil }

// Classify sends one message and parses the JSON verdict
func (o *OpenAI) Classify(ctx context.Context, text string) (Result, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("openai returned no choices")
	}

	content := resp.Choices[0].Message.Content
	o.logger.Debug("openai verdict", "response_length", len(content), "tokens_used", resp.Usage.TotalTokens)
	return parseVerdict(content)
}
