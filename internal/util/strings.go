// Package util provides text helpers shared by the TUI and the CLI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ellipsis marks shortened text.
const Ellipsis = "..."

// Preview returns the first n runes of s followed by an ellipsis. The ellipsis
// is always appended, so a preview never reads as the complete message.
// Newlines are flattened to spaces.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + Ellipsis
}

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// Escape codes and wide characters are measured correctly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= len(Ellipsis) {
		return Ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

var spanishTitle = cases.Title(language.Spanish)

// CategoryLabel turns a category id such as "familia" into "Familia".
// Conversations without a category are "General".
func CategoryLabel(id string) string {
	if strings.TrimSpace(id) == "" {
		return "General"
	}
	return spanishTitle.String(id)
}

// Upper upper-cases a risk level or clause type for display.
func Upper(s string) string {
	return strings.ToUpper(s)
}
