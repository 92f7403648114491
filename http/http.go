// Package http implements [docchat.Transport] for the document-QA chat
// backend over HTTP.
//
// Streaming requests are POSTed to the stream endpoint and the response body
// is decoded frame by frame with package sse. The fallback request is a
// plain JSON POST to the non-streaming endpoint.
package http

import "encoding/json"

const (
	defaultBaseURL = "http://localhost:8000"
	streamPath     = "/api/chat/stream"
	completePath   = "/api/chat"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4 << 10
)

// apiRequest is the JSON body sent to both endpoints.
type apiRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	TenantID  string `json:"tenant_id"`
}

// apiReply is the JSON body returned by the non-streaming endpoint.
type apiReply struct {
	Message   string      `json:"message"`
	SessionID string      `json:"session_id"`
	Sources   []apiSource `json:"sources"`
	Tools     []apiTool   `json:"tools"`
}

type apiSource struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	URL        string  `json:"url,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

type apiTool struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// apiError is the JSON body returned on non-2xx responses.
type apiError struct {
	Detail string `json:"detail"`
}
