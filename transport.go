package docchat

import "context"

// Streamer opens a streaming chat request and dispatches every decoded event
// to h, in order, on the calling goroutine. It returns when the stream is
// exhausted or ctx is cancelled. A rejected response (non-success status or
// missing body) is reported through h.OnError and Stream returns nil;
// failures that prevent dispatch altogether are returned as errors.
type Streamer interface {
	Stream(ctx context.Context, req ChatRequest, h Handlers) error
}

// Completer performs the non-streaming fallback request.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (Reply, error)
}

// Transport is the backend contract consumed by Chat.
type Transport interface {
	Streamer
	Completer
}

// Reply is the response of the non-streaming endpoint.
type Reply struct {
	Message   string
	SessionID string
	Sources   []Source
	ToolCalls []ToolCall
}

// TokenSource supplies the bearer credential attached to every request.
// Refreshing it is the implementation's concern.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }
