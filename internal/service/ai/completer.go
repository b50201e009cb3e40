package ai

import (
	"context"
	"errors"
)

// Message is one role/content pair in the prompt sent to the collaborator.
type Message struct {
	Role    string
	Content string
}

// Prompt message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrUnavailable is returned when no provider is configured. The orchestrator
// absorbs it like any other collaborator failure.
var ErrUnavailable = errors.New("llm provider unavailable")

// Completer is the external LLM collaborator boundary: an ordered prompt in,
// a single text completion out, or an error. Nothing else is assumed.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Streamer is implemented by providers that can deliver the completion
// incrementally. onDelta receives each fragment; the full text is returned
// once the stream ends.
type Streamer interface {
	Stream(ctx context.Context, messages []Message, onDelta func(delta string)) (string, error)
}

// Disabled is the no-op completer used when configuration names no usable
// provider; every call fails with ErrUnavailable.
type Disabled struct{}

// Complete always reports the collaborator as unavailable.
func (Disabled) Complete(context.Context, []Message) (string, error) {
	return "", ErrUnavailable
}
