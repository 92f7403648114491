package docchat

import (
	"context"
	"time"
)

// Session represents a chat session with one tenant's document collection.
// ID is empty until the server assigns one.
type Session struct {
	ID        string
	TenantID  string
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty session for a tenant.
func NewSession(tenantID string) Session {
	now := time.Now()
	return Session{TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
}

// SessionStore persists finalized sessions. Load returns ErrSessionNotFound
// when no session is stored under id.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context, id string) (Session, error)
}
