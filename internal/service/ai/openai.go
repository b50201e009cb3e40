package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/calmana/backend/internal/config"
)

// OpenAICompleter talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, OpenRouter, Together) through the official client.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature *float64
	topP        *float64
	maxTokens   *int
}

// NewOpenAICompleter validates credentials and builds the client.
func NewOpenAICompleter(cfg config.LLMConfig) (*OpenAICompleter, error) {
	if !cfg.OpenAIEnabled() {
		return nil, fmt.Errorf("openai credentials missing: provide OPENAI_API_KEY and OPENAI_MODEL")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAICompleter{
		client:      &client,
		model:       cfg.OpenAIModel,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Complete sends the prompt and returns the trimmed completion text.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toChatParams(messages),
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}
	if c.topP != nil {
		params.TopP = openai.Float(*c.topP)
	}
	if c.maxTokens != nil {
		params.MaxTokens = openai.Int(int64(*c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toChatParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
}
