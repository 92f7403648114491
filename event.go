package docchat

// Event is a sealed interface representing one typed event decoded from a
// chat stream frame. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventSession carries the session id assigned by the server.
type EventSession struct {
	SessionID string
}

func (EventSession) event() {}

// EventText represents an assistant text delta.
type EventText struct {
	Content string
}

func (EventText) event() {}

// EventTools carries the tool invocations the server ran for this answer.
type EventTools struct {
	Tools []ToolCall
}

func (EventTools) event() {}

// EventEnd signals the normal end of the answer.
type EventEnd struct{}

func (EventEnd) event() {}

// ErrorKind classifies an EventError.
type ErrorKind int

const (
	ErrorServer    ErrorKind = iota // "error" frame sent by the server.
	ErrorFraming                    // Frame payload could not be decoded.
	ErrorTransport                  // Non-success HTTP status or missing body.
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorServer:
		return "server"
	case ErrorFraming:
		return "framing"
	case ErrorTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// EventError reports a failure. Framing errors are non-fatal to the stream;
// server and transport errors end the request.
type EventError struct {
	Message string
	Kind    ErrorKind
	// Status is the HTTP status of a transport error, zero otherwise.
	Status int
}

func (EventError) event() {}

// Fatal reports whether the error terminates the request.
func (e EventError) Fatal() bool { return e.Kind != ErrorFraming }

// Interface compliance checks.
var (
	_ Event = EventSession{}
	_ Event = EventText{}
	_ Event = EventTools{}
	_ Event = EventEnd{}
	_ Event = EventError{}
)
