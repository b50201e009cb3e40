package ai

import (
	"github.com/calmana/backend/internal/model/chat"
)

// Composer assembles the ordered prompt for the collaborator: one system
// instruction, the trimmed history window, then the new user message last.
type Composer struct {
	systemPrompt string
	windowSize   int
}

// NewComposer builds a composer. An empty systemPrompt falls back to the
// default persona; windowSize <= 0 disables history trimming here (the
// session store already bounds what it hands over).
func NewComposer(systemPrompt string, windowSize int) *Composer {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Composer{systemPrompt: systemPrompt, windowSize: windowSize}
}

// Compose produces the final message list. The caller may or may not have
// appended userMessage to history already; either way it appears exactly
// once, in last position.
func (c *Composer) Compose(history []chat.Turn, userMessage string) []Message {
	window := history
	if c.windowSize > 0 && len(window) > c.windowSize {
		window = window[len(window)-c.windowSize:]
	}

	// Drop a trailing user turn identical to the new message; it is the
	// same turn, already persisted before composition.
	if n := len(window); n > 0 {
		last := window[n-1]
		if last.Role == chat.RoleUser && last.Content == userMessage {
			window = window[:n-1]
		}
	}

	messages := make([]Message, 0, len(window)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: c.systemPrompt})

	for _, turn := range window {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, Message{Role: RoleUser, Content: turn.Content})
		case chat.RoleAssistant:
			messages = append(messages, Message{Role: RoleAssistant, Content: turn.Content})
		}
	}

	return append(messages, Message{Role: RoleUser, Content: userMessage})
}
