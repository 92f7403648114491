// Package bubbletea provides a Bubble Tea TUI for chatting with a document
// collection.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
)

// SubmitFunc sends one user message and blocks until the resulting request
// reaches a terminal outcome. onEvent is called for every event the request
// accepts, including events replayed from a fallback reply. A non-nil error
// means no request was started.
type SubmitFunc func(ctx context.Context, text string, onEvent func(docchat.Event)) (*docchat.Request, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a request event for delivery to the model.
type StreamEventMsg struct {
	Event docchat.Event
}

// RequestDoneMsg signals that a submitted request has finished.
type RequestDoneMsg struct {
	Request *docchat.Request
	Err     error
}
