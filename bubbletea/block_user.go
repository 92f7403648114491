package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock shows a question behind a "> " marker. Wrapped lines
// hang under the first character of the question.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: strings.TrimSpace(text), styles: styles}
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	const marker = "> "
	room := max(width-len(marker), 10)
	lines := strings.Split(ansi.Wrap(sanitize(b.text), room, ""), "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = b.styles.UserMsg.Render(marker) + lines[i]
			continue
		}
		lines[i] = strings.Repeat(" ", len(marker)) + lines[i]
	}
	return strings.Join(lines, "\n")
}
