package docchat

import "time"

// ChatRequest is the payload sent to both the streaming and the fallback
// endpoint.
type ChatRequest struct {
	Message   string
	SessionID string // empty on the first request of a session
	TenantID  string
}

// Outcome is the terminal state of a Request.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeCompleted Outcome = "completed"
	OutcomeErrored   Outcome = "errored"
	OutcomeAborted   Outcome = "aborted"
)

// Path records which transport produced a Request's outcome.
type Path string

const (
	PathStream   Path = "stream"
	PathFallback Path = "fallback"
)

// Request is one user-submitted message and its single resulting assistant
// response, however produced.
type Request struct {
	ID        string
	SessionID string
	TenantID  string
	Message   string

	Outcome Outcome
	Path    Path
	// Reply is the finalized assistant message. It is nil only when the
	// request ended in error or abort before any content arrived.
	Reply *ChatMessage
	// Err is set when Outcome is OutcomeErrored or OutcomeAborted.
	Err error
	// FrameErrors counts malformed frames skipped while streaming.
	FrameErrors int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Done reports whether the request reached a terminal outcome.
func (r *Request) Done() bool { return r.Outcome != OutcomePending }

func (r *Request) payload() ChatRequest {
	return ChatRequest{
		Message:   r.Message,
		SessionID: r.SessionID,
		TenantID:  r.TenantID,
	}
}
