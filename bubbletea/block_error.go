package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/docchat"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock reports why a request failed, with a hint line when the
// failure has a known cause.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render(sanitize(fmt.Sprintf("Error: %v", b.err)))
	if hint := errorHint(b.err); hint != "" {
		content += "\n" + b.styles.Muted.Render(hint)
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}

func errorHint(err error) string {
	var (
		te *docchat.TransportError
		fe *docchat.FallbackError
		se *docchat.StreamError
	)
	switch {
	case errors.As(err, &fe):
		return "The answer stream stalled and the fallback request failed too."
	case errors.As(err, &te):
		switch {
		case te.Status == 0:
			return "Could not reach the service. Check the base URL and your connection."
		case te.Status == 401 || te.Status == 403:
			return "The service rejected the credentials. Check the access token."
		case te.Status >= 500:
			return "The service is having trouble. Try again shortly."
		}
	case errors.As(err, &se):
		return "The service stopped while answering."
	case errors.Is(err, docchat.ErrUnexpectedEnd):
		return "The connection closed before the answer finished."
	}
	return ""
}
