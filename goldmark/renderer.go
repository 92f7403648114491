package goldmark

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/docchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var citation = regexp.MustCompile(`\[\d{1,3}\]`)

var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

type renderer struct {
	src []byte

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	code      lipgloss.Style
	cite      lipgloss.Style
}

func newRenderer(theme docchat.Theme, src []byte) *renderer {
	return &renderer{
		src:       src,
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		code:      lipgloss.NewStyle().Bold(true).Background(ansiColor(theme.CodeBg)),
		cite:      lipgloss.NewStyle().Foreground(ansiColor(theme.Source)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(width int) string {
	doc := md.Parser().Parse(text.NewReader(r.src))
	var buf bytes.Buffer
	r.children(doc, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *renderer) children(node ast.Node, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, width, buf)
		if c.NextSibling() != nil && !isHTML(c) {
			buf.WriteString("\n")
		}
	}
}

func isHTML(n ast.Node) bool {
	_, ok := n.(*ast.HTMLBlock)
	return ok
}

func (r *renderer) block(node ast.Node, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrapped(r.inline(n), width, buf)

	case *ast.Heading:
		r.wrapped(r.heading.Render(r.inline(n)), width, buf)

	case *ast.FencedCodeBlock:
		if lang := n.Language(r.src); len(lang) > 0 {
			buf.WriteString(r.muted.Render(string(lang)) + "\n")
		}
		r.codeLines(n, buf)

	case *ast.CodeBlock:
		r.codeLines(n, buf)

	case *ast.Blockquote:
		r.quote(n, width, buf)

	case *ast.List:
		r.list(n, 0, width, buf)

	case *east.Table:
		r.table(n, buf)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")

	case *ast.HTMLBlock:
		r.rawLines(n.Lines(), buf)

	default:
		r.children(node, width, buf)
	}
}

func (r *renderer) wrapped(s string, width int, buf *bytes.Buffer) {
	buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	buf.WriteString("\n")
}

func (r *renderer) codeLines(n ast.Node, buf *bytes.Buffer) {
	gutter := r.muted.Render("│") + " "
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.WriteString(gutter + strings.TrimRight(string(seg.Value(r.src)), "\n") + "\n")
	}
}

func (r *renderer) rawLines(lines *text.Segments, buf *bytes.Buffer) {
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(r.src))
	}
}

// quote renders a blockquote, typically a passage lifted from a source
// document, behind a muted bar.
func (r *renderer) quote(n *ast.Blockquote, width int, buf *bytes.Buffer) {
	var inner bytes.Buffer
	r.children(n, max(width-2, 10), &inner)
	bar := r.muted.Render("▎") + " "
	for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
		buf.WriteString(bar + r.italic.Render(line) + "\n")
	}
}

func (r *renderer) list(n *ast.List, depth, width int, buf *bytes.Buffer) {
	indent := strings.Repeat("  ", depth)
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var content bytes.Buffer
		flush := func() {
			if content.Len() == 0 {
				return
			}
			r.listItem(indent+marker, strings.TrimRight(content.String(), "\n"), width, buf)
			content.Reset()
			marker = strings.Repeat(" ", len(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content.WriteString(r.inline(in))
			case *ast.List:
				flush()
				r.list(in, depth+1, width, buf)
			default:
				r.block(ic, width, &content)
			}
		}
		flush()
	}
}

// listItem writes content after prefix, indenting continuation lines to
// line up with the first.
func (r *renderer) listItem(prefix, content string, width int, buf *bytes.Buffer) {
	wrapped := lipgloss.NewStyle().Width(max(width-len(prefix), 10)).Render(content)
	pad := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
			continue
		}
		buf.WriteString(pad + line + "\n")
	}
}

// table renders a GFM table with columns padded to their widest cell.
// Cells are not wrapped.
func (r *renderer) table(n *east.Table, buf *bytes.Buffer) {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			s := r.inline(cell)
			if _, ok := row.(*east.TableHeader); ok {
				s = r.bold.Render(s)
			}
			cells = append(cells, s)
		}
		rows = append(rows, cells)
	}

	var widths []int
	for _, cells := range rows {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	sep := r.muted.Render(" │ ")
	for i, cells := range rows {
		padded := make([]string, len(cells))
		for j, c := range cells {
			padded[j] = c + strings.Repeat(" ", widths[j]-lipgloss.Width(c))
		}
		buf.WriteString(strings.TrimRight(strings.Join(padded, sep), " ") + "\n")
		if i == 0 {
			rules := make([]string, len(widths))
			for j, w := range widths {
				rules[j] = strings.Repeat("─", w)
			}
			buf.WriteString(r.muted.Render(strings.Join(rules, "─┼─")) + "\n")
		}
	}
}

// inline renders a node's inline children and highlights citation markers.
func (r *renderer) inline(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &buf)
	}
	return citation.ReplaceAllStringFunc(buf.String(), func(s string) string { return r.cite.Render(s) })
}

func (r *renderer) span(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.spans(n)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *east.Strikethrough:
		buf.WriteString(r.strike.Render(r.spans(n)))

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.spans(n)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.spans(n)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(r.src))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.spans(n)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		r.rawLines(n.Segments, buf)

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, buf)
		}
	}
}

func (r *renderer) spans(node ast.Node) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &buf)
	}
	return buf.String()
}
