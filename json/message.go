package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/docchat"
)

// messageDTO is the JSON representation of a ChatMessage.
type messageDTO struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Sources   []sourceDTO   `json:"sources,omitempty"`
	ToolCalls []toolCallDTO `json:"tool_calls,omitempty"`
	Partial   bool          `json:"partial,omitempty"`
}

type sourceDTO struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

type toolCallDTO struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

func marshalMessage(msg docchat.ChatMessage) (messageDTO, error) {
	if err := docchat.ValidateMessage(msg); err != nil {
		return messageDTO{}, err
	}
	dto := messageDTO{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Partial:   msg.Partial,
	}
	for _, s := range msg.Sources {
		dto.Sources = append(dto.Sources, sourceDTO(s))
	}
	for _, tc := range msg.ToolCalls {
		dto.ToolCalls = append(dto.ToolCalls, toolCallDTO{Name: tc.Name, Args: tc.Args})
	}
	return dto, nil
}

func unmarshalMessage(dto messageDTO) (docchat.ChatMessage, error) {
	msg := docchat.ChatMessage{
		ID:        dto.ID,
		Role:      docchat.Role(dto.Role),
		Content:   dto.Content,
		Timestamp: dto.Timestamp,
		Partial:   dto.Partial,
	}
	for _, s := range dto.Sources {
		msg.Sources = append(msg.Sources, docchat.Source(s))
	}
	for _, tc := range dto.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, docchat.ToolCall{Name: tc.Name, Args: tc.Args})
	}
	if err := docchat.ValidateMessage(msg); err != nil {
		return docchat.ChatMessage{}, fmt.Errorf("invalid %q message: %w", dto.Role, err)
	}
	return msg, nil
}
