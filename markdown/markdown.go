// Package markdown renders bot replies, which are usually markdown, to
// ANSI-styled terminal text. Parsing is done by goldmark with the
// strikethrough and linkify extensions; styling by lipgloss.
package markdown

import "github.com/fwojciec/ragchat"

// DefaultWidth is used when Render is called with a non-positive width.
const DefaultWidth = 80

// Render parses source and returns styled terminal output. Prose is
// word-wrapped to width; code blocks are kept verbatim.
func Render(source string, width int, theme ragchat.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}
