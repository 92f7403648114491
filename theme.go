package docchat

// Theme maps semantic roles to ANSI color indices (0-15). The terminal's
// palette decides the actual RGB values.
type Theme struct {
	UserMsg  int // User message accent
	ToolCall int // Tool call header
	Source   int // Citation markers and source titles
	Error    int // Error messages
	Success  int // Completed status
	Warning  int // Fallback status
	Muted    int // Status bar, placeholders, URLs
	CodeBg   int // Code block background
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		ToolCall: 3,
		Source:   6,
		Error:    1,
		Success:  2,
		Warning:  3,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}
