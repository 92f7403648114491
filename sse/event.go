package sse

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/docchat"
)

// payload is the JSON object carried by a data frame. Fields are populated
// depending on Type.
type payload struct {
	Type string `json:"type"`

	// session
	SessionID string `json:"session_id,omitempty"`

	// text, error
	Content string `json:"content,omitempty"`

	// tools
	Tools []wireTool `json:"tools,omitempty"`
}

type wireTool struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Parse maps one frame to a typed event. It returns false for frames that
// carry no event: frames without a data line and payloads with an unknown
// type. A payload that is not valid JSON yields an [docchat.EventError] of
// kind [docchat.ErrorFraming].
func Parse(record string) (docchat.Event, bool) {
	data, ok := frameData(record)
	if !ok {
		return nil, false
	}

	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return docchat.EventError{Message: invalidPayload, Kind: docchat.ErrorFraming}, true
	}

	switch p.Type {
	case "session":
		return docchat.EventSession{SessionID: p.SessionID}, true
	case "text":
		return docchat.EventText{Content: p.Content}, true
	case "tools":
		return docchat.EventTools{Tools: convertTools(p.Tools)}, true
	case "end":
		return docchat.EventEnd{}, true
	case "error":
		msg := p.Content
		if msg == "" {
			msg = "stream error"
		}
		return docchat.EventError{Message: msg, Kind: docchat.ErrorServer}, true
	default:
		// Unknown types are ignored so the server can add new ones.
		return nil, false
	}
}

// frameData returns the payload of a frame's data lines, joined with
// newlines. Other fields (event:, id:) and comments are ignored.
func frameData(record string) (string, bool) {
	var (
		data  strings.Builder
		found bool
	)
	for line := range strings.SplitSeq(record, "\n") {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, dataPrefix)
		if !ok {
			continue
		}
		if found {
			data.WriteByte('\n')
		}
		data.WriteString(strings.TrimPrefix(rest, " "))
		found = true
	}
	return data.String(), found
}

func convertTools(tools []wireTool) []docchat.ToolCall {
	if len(tools) == 0 {
		return nil
	}
	result := make([]docchat.ToolCall, len(tools))
	for i, t := range tools {
		args := t.Args
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		result[i] = docchat.ToolCall{Name: t.Name, Args: args}
	}
	return result
}
