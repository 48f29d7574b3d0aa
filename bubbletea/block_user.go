package bubbletea

import "github.com/fwojciec/ragchat"

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message. A failed turn gets a marker line
// under the message.
type UserMessageBlock struct {
	text   string
	status ragchat.TurnStatus
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, status ragchat.TurnStatus, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, status: status, styles: styles}
}

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render("You") + "\n" + b.text
	view := b.styles.UserBg.Width(width).Render(content)
	if b.status.State == ragchat.TurnFailed {
		view += "\n" + NewFailureBlock(b.status.Err, b.styles).View(width)
	}
	return view
}
