package bubbletea

import (
	"bytes"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
)

var _ MessageBlock = (*ToolCallBlock)(nil)

// ToolCallBlock shows a tool the server ran while answering, such as a
// document search. Arguments are shown when expanded.
type ToolCallBlock struct {
	call      docchat.ToolCall
	collapsed bool
	styles    Styles
}

// NewToolCallBlock creates a ToolCallBlock that starts collapsed.
func NewToolCallBlock(call docchat.ToolCall, styles Styles) *ToolCallBlock {
	return &ToolCallBlock{call: call, collapsed: true, styles: styles}
}

// Name returns the tool name.
func (b *ToolCallBlock) Name() string { return b.call.Name }

func (b *ToolCallBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	switch msg := msg.(type) {
	case ToggleMsg:
		b.collapsed = !b.collapsed
	case SetCollapsedMsg:
		b.collapsed = msg.Collapsed
	}
	return b, nil
}

func (b *ToolCallBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	content := b.styles.ToolCall.Render(indicator + " " + sanitize(b.call.Name))
	if args := b.args(); !b.collapsed && args != "" {
		content += "\n" + b.styles.Muted.Render(args)
	}
	return b.styles.Panel.Width(width).Render(content)
}

func (b *ToolCallBlock) args() string {
	if len(b.call.Args) == 0 || bytes.Equal(b.call.Args, []byte("{}")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b.call.Args, "", "  "); err != nil {
		return sanitize(string(b.call.Args))
	}
	return buf.String()
}
