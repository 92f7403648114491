package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the question input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model

	submit  SubmitFunc
	history []docchat.ChatMessage
	theme   docchat.Theme
	styles  Styles

	blocks      []MessageBlock
	blockFocus  int // index of focused collapsible block (-1 = none)
	allExpanded bool

	// activeText receives text fragments of the running request. It is
	// reset when tool calls arrive so later text starts a new block below
	// them.
	activeText *AssistantTextBlock

	sessionID string
	running   bool
	cancel    context.CancelFunc
	eventCh   chan docchat.Event
	doneCh    chan RequestDoneMsg
	last      *docchat.Request
	err       error
	ready     bool
}

// New creates a TUI Model. session supplies the transcript shown on start;
// the model never modifies it.
func New(submit SubmitFunc, session docchat.Session, theme docchat.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:      ti,
		submit:     submit,
		history:    session.Messages,
		sessionID:  session.ID,
		theme:      theme,
		styles:     NewStyles(theme),
		blockFocus: -1,
	}
}

// Running reports whether a request is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last request, if any.
func (m Model) Err() error { return m.err }

// LastRequest returns the most recently finished request.
func (m Model) LastRequest() *docchat.Request { return m.last }

// SessionID returns the server-assigned session id, if known.
func (m Model) SessionID() string { return m.sessionID }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case RequestDoneMsg:
		m = m.finishRequest(msg)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const inputHeight, statusHeight, gaps = 1, 1, 2
	vpHeight := max(msg.Height-inputHeight-statusHeight-gaps, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderHistory()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
		}
		return m, nil

	case tea.KeyCtrlO:
		m.allExpanded = !m.allExpanded
		for i, b := range m.blocks {
			if isCollapsible(b) {
				m.blocks[i], _ = b.Update(SetCollapsedMsg{Collapsed: !m.allExpanded})
			}
		}
		m.Viewport.SetContent(m.renderContent())
		return m, nil
	}

	// Character keys go to the input only; 'j' and 'k' would otherwise
	// scroll the viewport while typing.
	if !m.running {
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.activeText = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan docchat.Event, 256)
	m.doneCh = make(chan RequestDoneMsg, 1)
	m.running = true

	return m, tea.Batch(
		startRequest(ctx, m.submit, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// processEvent applies one request event to the transcript.
func (m Model) processEvent(evt docchat.Event) Model {
	switch e := evt.(type) {
	case docchat.EventSession:
		if e.SessionID != "" {
			m.sessionID = e.SessionID
		}
	case docchat.EventText:
		if m.activeText == nil {
			m.activeText = NewAssistantTextBlock(m.theme, m.styles)
			m.blocks = append(m.blocks, m.activeText)
		}
		m.activeText.Append(e.Content)
	case docchat.EventTools:
		for _, call := range e.Tools {
			m.blocks = append(m.blocks, NewToolCallBlock(call, m.styles))
		}
		m.activeText = nil
		m = m.updateBlockFocus()
	}
	return m
}

// finishRequest records a request's outcome. Sources only become known
// here because they are not part of the event stream.
func (m Model) finishRequest(msg RequestDoneMsg) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	if msg.Err != nil {
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
		return m
	}
	req := msg.Request
	m.last = req
	if req.SessionID != "" {
		m.sessionID = req.SessionID
	}
	if req.Reply != nil {
		if m.activeText != nil {
			m.activeText.SetPartial(req.Reply.Partial)
		}
		if len(req.Reply.Sources) > 0 {
			m.blocks = append(m.blocks, NewSourcesBlock(req.Reply.Sources, m.styles))
		}
	}
	if req.Outcome == docchat.OutcomeErrored {
		m.err = req.Err
		m.blocks = append(m.blocks, NewErrorBlock(req.Err, m.styles))
	}
	m.activeText = nil
	return m.updateBlockFocus()
}

// renderHistory creates blocks for the transcript the model started with.
func (m Model) renderHistory() Model {
	for _, msg := range m.history {
		switch msg.Role {
		case docchat.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case docchat.RoleAssistant:
			for _, call := range msg.ToolCalls {
				m.blocks = append(m.blocks, NewToolCallBlock(call, m.styles))
			}
			if msg.Content != "" || msg.Partial {
				b := NewAssistantTextBlock(m.theme, m.styles)
				b.Append(msg.Content)
				b.SetPartial(msg.Partial)
				m.blocks = append(m.blocks, b)
			}
			if len(msg.Sources) > 0 {
				m.blocks = append(m.blocks, NewSourcesBlock(msg.Sources, m.styles))
			}
		}
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateBlockFocus focuses the last collapsible block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if isCollapsible(m.blocks[i]) {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block,
// wrapping around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.blocks)
	start := m.blockFocus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if isCollapsible(m.blocks[idx]) {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.styles.Muted.Render("Generating... (Ctrl+C to stop)")
	}
	hint := m.styles.Muted.Render("Enter to send, Tab to expand, Ctrl+C to quit")
	switch {
	case m.last == nil:
		return hint
	case m.last.Outcome == docchat.OutcomeAborted:
		return m.styles.Warning.Render("Stopped") + "  " + hint
	case m.last.Path == docchat.PathFallback:
		return m.styles.Warning.Render("Answered without streaming") + "  " + hint
	default:
		return m.styles.Success.Render("✓") + "  " + hint
	}
}

// startRequest runs submit in the command's goroutine and reports its
// result on doneCh after closing eventCh.
func startRequest(ctx context.Context, submit SubmitFunc, text string, eventCh chan<- docchat.Event, doneCh chan<- RequestDoneMsg) tea.Cmd {
	return func() tea.Msg {
		req, err := submit(ctx, text, func(e docchat.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- RequestDoneMsg{Request: req, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event. When the channel closes it
// returns the RequestDoneMsg.
func listenForEvent(ch <-chan docchat.Event, doneCh <-chan RequestDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return StreamEventMsg{Event: evt}
	}
}
