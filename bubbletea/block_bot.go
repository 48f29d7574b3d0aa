package bubbletea

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/markdown"
)

var _ MessageBlock = (*BotMessageBlock)(nil)

// BotMessageBlock renders a bot reply as markdown. Rendering is cached per
// width since replies never change once received.
type BotMessageBlock struct {
	text    string
	theme   ragchat.Theme
	styles  Styles
	byWidth map[int]string
}

// NewBotMessageBlock creates a BotMessageBlock.
func NewBotMessageBlock(text string, theme ragchat.Theme, styles Styles) *BotMessageBlock {
	return &BotMessageBlock{
		text:    text,
		theme:   theme,
		styles:  styles,
		byWidth: make(map[int]string),
	}
}

func (b *BotMessageBlock) View(width int) string {
	if v, ok := b.byWidth[width]; ok {
		return v
	}
	body := markdown.Render(b.text, width-1, b.theme)
	v := lipgloss.NewStyle().PaddingLeft(1).Render(b.styles.BotMsg.Render("Bot") + "\n" + body)
	b.byWidth[width] = v
	return v
}
