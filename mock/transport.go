// Package mock provides test doubles for docchat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

// Interface compliance checks.
var (
	_ docchat.Transport    = (*Transport)(nil)
	_ docchat.SessionStore = (*SessionStore)(nil)
	_ docchat.TokenSource  = (*TokenSource)(nil)
)

// Transport is a test double for docchat.Transport.
// Set the function fields for the methods you need.
type Transport struct {
	StreamFn   func(ctx context.Context, req docchat.ChatRequest, h docchat.Handlers) error
	CompleteFn func(ctx context.Context, req docchat.ChatRequest) (docchat.Reply, error)
}

// Stream delegates to StreamFn.
func (t *Transport) Stream(ctx context.Context, req docchat.ChatRequest, h docchat.Handlers) error {
	return t.StreamFn(ctx, req, h)
}

// Complete delegates to CompleteFn.
func (t *Transport) Complete(ctx context.Context, req docchat.ChatRequest) (docchat.Reply, error) {
	return t.CompleteFn(ctx, req)
}

// Events returns a StreamFn that dispatches evts in order and returns nil.
// It stops early if ctx is cancelled.
func Events(evts ...docchat.Event) func(context.Context, docchat.ChatRequest, docchat.Handlers) error {
	return func(ctx context.Context, _ docchat.ChatRequest, h docchat.Handlers) error {
		for _, e := range evts {
			if err := ctx.Err(); err != nil {
				return err
			}
			h.Dispatch(e)
		}
		return nil
	}
}

// SessionStore is a test double for docchat.SessionStore.
type SessionStore struct {
	SaveFn func(ctx context.Context, s docchat.Session) error
	LoadFn func(ctx context.Context, id string) (docchat.Session, error)
}

// Save delegates to SaveFn.
func (s *SessionStore) Save(ctx context.Context, sess docchat.Session) error {
	return s.SaveFn(ctx, sess)
}

// Load delegates to LoadFn.
func (s *SessionStore) Load(ctx context.Context, id string) (docchat.Session, error) {
	return s.LoadFn(ctx, id)
}

// TokenSource is a test double for docchat.TokenSource.
type TokenSource struct {
	TokenFn func(ctx context.Context) (string, error)
}

// Token delegates to TokenFn.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	return t.TokenFn(ctx)
}
