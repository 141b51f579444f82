package engine

import (
	"fmt"
	"strings"
)

// FormatSummary renders a Summary for terminal output.
func FormatSummary(s Summary) string {
	var sb strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&sb, "%s\n", s.Title)
	}
	fmt.Fprintf(&sb, "%s (%s, via %s, %d words)\n\n", s.URL, s.Kind, s.Stage, s.Words)
	sb.WriteString(s.Text)
	sb.WriteByte('\n')
	return sb.String()
}
