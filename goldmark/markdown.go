// Package goldmark renders assistant answers, written in markdown, to
// ANSI-styled terminal output. Parsing is done by goldmark with the GFM table
// and strikethrough extensions; styling by lipgloss.
package goldmark

import "github.com/fwojciec/docchat"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// are printed verbatim. Bracketed citation markers such as [2] are
// highlighted so they can be matched against the answer's sources.
func Render(source string, width int, theme docchat.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme, []byte(source)).render(width)
}
