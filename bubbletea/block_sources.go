package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*SourcesBlock)(nil)

// SourcesBlock lists the documents cited by an answer. Collapsed, it shows a
// count and the first title; expanded, one numbered entry per source with
// its URL and snippet.
type SourcesBlock struct {
	sources   []docchat.Source
	collapsed bool
	styles    Styles
}

// NewSourcesBlock creates a SourcesBlock that starts collapsed.
func NewSourcesBlock(sources []docchat.Source, styles Styles) *SourcesBlock {
	return &SourcesBlock{sources: sources, collapsed: true, styles: styles}
}

// Len returns the number of sources.
func (b *SourcesBlock) Len() int { return len(b.sources) }

func (b *SourcesBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	switch msg := msg.(type) {
	case ToggleMsg:
		b.collapsed = !b.collapsed
	case SetCollapsedMsg:
		b.collapsed = msg.Collapsed
	}
	return b, nil
}

func (b *SourcesBlock) View(width int) string {
	noun := "sources"
	if len(b.sources) == 1 {
		noun = "source"
	}
	inner := max(width-1, 10) // Panel padding

	if b.collapsed {
		header := b.styles.Source.Render(fmt.Sprintf("▶ %d %s", len(b.sources), noun))
		if len(b.sources) > 0 {
			room := inner - runewidth.StringWidth(fmt.Sprintf("▶ %d %s  ", len(b.sources), noun))
			header += "  " + b.styles.Muted.Render(truncate(title(b.sources[0]), room))
		}
		return b.styles.Panel.Width(width).Render(header)
	}

	lines := []string{b.styles.Source.Render(fmt.Sprintf("▼ %d %s", len(b.sources), noun))}
	for i, s := range b.sources {
		marker := fmt.Sprintf("[%d] ", i+1)
		pad := strings.Repeat(" ", len(marker))
		room := inner - len(marker)
		lines = append(lines, b.styles.Source.Render(marker)+truncate(title(s), room))
		if s.URL != "" {
			lines = append(lines, pad+b.styles.Muted.Render(truncate(s.URL, room)))
		}
		if snippet := strings.Join(strings.Fields(s.Snippet), " "); snippet != "" {
			lines = append(lines, pad+b.styles.Muted.Render(truncate(snippet, room)))
		}
	}
	return b.styles.Panel.Width(width).Render(strings.Join(lines, "\n"))
}

func title(s docchat.Source) string {
	if s.Title != "" {
		return s.Title
	}
	return s.DocumentID
}

// truncate sanitizes s and shortens it to at most width display cells,
// accounting for wide CJK characters.
func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	return runewidth.Truncate(sanitize(s), width, "…")
}
