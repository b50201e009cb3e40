package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/calmana/backend/internal/config"
)

// ArkCompleter runs completions through a compiled eino chain backed by a
// Volcengine Ark chat model.
type ArkCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkCompleter builds the prompt-template + chat-model chain.
func NewArkCompleter(ctx context.Context, cfg config.LLMConfig) (*ArkCompleter, error) {
	chatModel, err := cfg.NewArkChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkCompleter{chain: runnable}, nil
}

// Complete invokes the chain and returns the trimmed completion text.
func (c *ArkCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	response, err := c.chain.Invoke(ctx, chainInput(messages))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// Stream forwards completion fragments as they arrive and returns the
// concatenated text once the model finishes.
func (c *ArkCompleter) Stream(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	stream, err := c.chain.Stream(ctx, chainInput(messages))
	if err != nil {
		return "", fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("failed to concatenate stream chunks: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// chainInput splits the composed prompt back into the chain's template
// variables: leading system text, trailing user query, history in between.
func chainInput(messages []Message) map[string]any {
	system := DefaultSystemPrompt
	query := ""

	rest := messages
	if len(rest) > 0 && rest[0].Role == RoleSystem {
		system = rest[0].Content
		rest = rest[1:]
	}
	if n := len(rest); n > 0 && rest[n-1].Role == RoleUser {
		query = rest[n-1].Content
		rest = rest[:n-1]
	}

	history := make([]*schema.Message, 0, len(rest))
	for _, msg := range rest {
		switch msg.Role {
		case RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  system,
		"history": history,
		"query":   query,
	}
}
