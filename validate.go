package docchat

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on ChatRequest.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message must not be empty: %w", ErrValidation)
	}
	if r.TenantID == "" {
		return fmt.Errorf("tenant id is required: %w", ErrValidation)
	}
	return nil
}

// ValidateMessage checks that a message's fields are consistent with its role.
func ValidateMessage(msg ChatMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("message id is required: %w", ErrValidation)
	}
	switch msg.Role {
	case RoleUser:
		if len(msg.Sources) > 0 {
			return fmt.Errorf("sources not allowed in %s message: %w", msg.Role, ErrValidation)
		}
		if len(msg.ToolCalls) > 0 {
			return fmt.Errorf("tool calls not allowed in %s message: %w", msg.Role, ErrValidation)
		}
		if msg.Partial {
			return fmt.Errorf("%s message cannot be partial: %w", msg.Role, ErrValidation)
		}
	case RoleAssistant:
		for i, tc := range msg.ToolCalls {
			if tc.Name == "" {
				return fmt.Errorf("tool call %d has no name: %w", i, ErrValidation)
			}
		}
	default:
		return fmt.Errorf("unknown role %q: %w", msg.Role, ErrValidation)
	}
	return nil
}
