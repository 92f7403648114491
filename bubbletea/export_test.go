package bubbletea

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// AllExpanded reports whether Ctrl+O last expanded every collapsible block.
func AllExpanded(m Model) bool {
	return m.allExpanded
}

// SetRunningWithCancel puts the model in a running state with cancel as the
// request's cancel function.
func SetRunningWithCancel(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string { return sanitize(s) }
