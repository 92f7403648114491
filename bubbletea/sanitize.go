package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize removes terminal escape sequences and control characters from
// server-supplied text before it reaches the screen. Tabs and newlines
// survive; CRLF becomes LF and any other carriage return is dropped.
func sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

func needsSanitize(s string) bool {
	for _, r := range s {
		if r == '\t' || r == '\n' {
			continue
		}
		if r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F) {
			return true
		}
	}
	return false
}
