package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
type ToggleMsg struct{}

// SetCollapsedMsg sets a collapsible block's state explicitly.
type SetCollapsedMsg struct {
	Collapsed bool
}

func isCollapsible(b MessageBlock) bool {
	switch b.(type) {
	case *ToolCallBlock, *SourcesBlock:
		return true
	}
	return false
}

// blockSeparator returns the gap placed between two consecutive blocks.
// Runs of collapsible blocks stack tightly; everything else is separated by
// a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	if isCollapsible(prev) && isCollapsible(curr) {
		return "\n"
	}
	return "\n\n"
}
