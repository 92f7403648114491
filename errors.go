package docchat

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamTimeout indicates no stream event arrived within the
	// fallback window.
	ErrStreamTimeout = errors.New("stream timeout")

	// ErrUnexpectedEnd indicates the stream finished without an end event.
	ErrUnexpectedEnd = errors.New("unexpected end of stream")

	// ErrSessionNotFound indicates a SessionStore has no session for an id.
	ErrSessionNotFound = errors.New("session not found")
)

// TransportError reports a streaming request that failed before or while
// delivering frames: a non-success HTTP status, a missing body, or a
// connection/read failure.
type TransportError struct {
	Status int // HTTP status, 0 when the failure happened below HTTP.
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StreamError reports an error frame sent by the server.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return e.Message }

// FallbackError reports a failed synchronous fallback request. It wraps
// ErrStreamTimeout when the fallback was triggered by the timer.
type FallbackError struct {
	Cause error // why the fallback ran
	Err   error // why it failed
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("fallback: %v", e.Err)
}

func (e *FallbackError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
