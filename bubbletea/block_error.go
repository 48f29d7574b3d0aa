package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragchat"
)

var _ MessageBlock = (*FailureBlock)(nil)

// FailureBlock marks a chat turn whose request failed.
type FailureBlock struct {
	err    error
	styles Styles
}

// NewFailureBlock creates a FailureBlock.
func NewFailureBlock(err error, styles Styles) *FailureBlock {
	return &FailureBlock{err: err, styles: styles}
}

func (b *FailureBlock) View(width int) string {
	content := b.styles.Error.Render("✗ message failed: " + describeError(b.err))
	return lipgloss.NewStyle().Width(width).Render(content)
}

// describeError phrases err for the status line and failure markers.
func describeError(err error) string {
	if err == nil {
		return "unknown error"
	}
	switch ragchat.ErrorKindOf(err) {
	case ragchat.ErrorTransport:
		return "backend unreachable"
	case ragchat.ErrorDecode:
		return "unexpected response from backend"
	}
	return fmt.Sprint(err)
}
