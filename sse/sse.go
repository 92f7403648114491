// Package sse decodes the chat backend's event stream.
//
// The wire format is a sequence of frames, each a "data: <json>" line
// followed by a blank line. Decoder splits an arbitrarily chunked byte
// stream into frames, Parse turns a frame into a typed [docchat.Event], and
// Consume drives both from an [io.Reader], dispatching to
// [docchat.Handlers].
package sse

const (
	delimiter  = "\n\n"
	dataPrefix = "data:"

	// invalidPayload is reported for frames whose payload fails to decode.
	// The payload itself is never echoed.
	invalidPayload = "invalid JSON event"
)
