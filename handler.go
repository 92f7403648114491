package docchat

// Handlers receives typed stream events. Nil fields are skipped.
type Handlers struct {
	OnSession func(sessionID string)
	OnText    func(content string)
	OnTools   func(tools []ToolCall)
	OnEnd     func()
	OnError   func(e EventError)
}

// Dispatch invokes the handler matching evt's variant.
func (h Handlers) Dispatch(evt Event) {
	switch e := evt.(type) {
	case EventSession:
		if h.OnSession != nil {
			h.OnSession(e.SessionID)
		}
	case EventText:
		if h.OnText != nil {
			h.OnText(e.Content)
		}
	case EventTools:
		if h.OnTools != nil {
			h.OnTools(e.Tools)
		}
	case EventEnd:
		if h.OnEnd != nil {
			h.OnEnd()
		}
	case EventError:
		if h.OnError != nil {
			h.OnError(e)
		}
	}
}

// HandlerFunc adapts a single event callback into Handlers.
func HandlerFunc(fn func(Event)) Handlers {
	return Handlers{
		OnSession: func(id string) { fn(EventSession{SessionID: id}) },
		OnText:    func(c string) { fn(EventText{Content: c}) },
		OnTools:   func(tools []ToolCall) { fn(EventTools{Tools: tools}) },
		OnEnd:     func() { fn(EventEnd{}) },
		OnError:   func(e EventError) { fn(e) },
	}
}
