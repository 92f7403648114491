package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders a streamed answer as markdown. Text up to the
// last paragraph break outside a code fence is rendered once per width and
// cached; only the tail is re-rendered as fragments arrive.
type AssistantTextBlock struct {
	content strings.Builder
	theme   docchat.Theme
	styles  Styles
	partial bool

	stable        string
	stableByWidth map[int]string
}

// NewAssistantTextBlock creates an empty answer block.
func NewAssistantTextBlock(theme docchat.Theme, styles Styles) *AssistantTextBlock {
	return &AssistantTextBlock{
		theme:         theme,
		styles:        styles,
		stableByWidth: make(map[int]string),
	}
}

// Append adds a text fragment.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.advanceStable()
}

// Content returns the raw markdown received so far.
func (b *AssistantTextBlock) Content() string { return b.content.String() }

// SetPartial marks the answer as cut short.
func (b *AssistantTextBlock) SetPartial(partial bool) { b.partial = partial }

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	out := b.render(width)
	if b.partial {
		marker := b.styles.Warning.Render("[answer incomplete]")
		if out == "" {
			return marker
		}
		return out + "\n" + marker
	}
	return out
}

func (b *AssistantTextBlock) render(width int) string {
	stable := b.renderStable(width)
	tail := strings.TrimPrefix(b.content.String(), b.stable)
	tail = strings.TrimPrefix(tail, "\n\n")
	if tail == "" {
		return stable
	}
	if hasUnclosedFence(tail) {
		// Close the fence for display only.
		tail += "\n```"
	}
	rendered := goldmark.Render(sanitize(tail), width, b.theme)
	if strings.TrimSpace(rendered) == "" {
		return stable
	}
	if stable == "" {
		return rendered
	}
	return strings.TrimRight(stable, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// advanceStable moves the stable prefix to the last "\n\n" that is not
// inside a code fence.
func (b *AssistantTextBlock) advanceStable() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(sanitize(b.stable), width, b.theme)
	b.stableByWidth[width] = rendered
	return rendered
}

// hasUnclosedFence reports an odd number of ``` markers. Triple backticks
// inside inline code are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
