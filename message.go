package docchat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry of a chat transcript.
//
// The assistant message of a Request is created lazily on the first
// content-bearing event and mutated only by the Chat that owns the Request.
// Once appended to a Session it must not be modified.
type ChatMessage struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	Sources   []Source
	ToolCalls []ToolCall

	// Partial is set when the answer was cut short by an error or abort
	// and Content holds only what arrived before it.
	Partial bool
}

// ToolCall describes a tool invocation the server performed while answering.
type ToolCall struct {
	Name string
	Args json.RawMessage
}

// Source is a citation to a tenant document backing an answer.
type Source struct {
	DocumentID string
	Title      string
	URL        string
	Snippet    string
	Score      float64
}

// NewUserMessage creates a user ChatMessage with a fresh id.
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
}

// newAssistantMessage creates an empty assistant ChatMessage with a fresh id.
func newAssistantMessage() *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}
