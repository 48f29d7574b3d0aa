package markdown

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragchat"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	quoteBar  = "▎ "
	codeBar   = "│ "
	bullet    = "• "
	minColumn = 10
)

type renderer struct {
	md goldmark.Markdown

	heading lipgloss.Style
	strong  lipgloss.Style
	em      lipgloss.Style
	strike  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

func newRenderer(theme ragchat.Theme) *renderer {
	return &renderer{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
		)),
		heading: lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		strong:  lipgloss.NewStyle().Bold(true),
		em:      lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		code:    lipgloss.NewStyle().Background(color(theme.CodeBg)),
		link:    lipgloss.NewStyle().Foreground(color(theme.Accent)).Underline(true),
		muted:   lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte, width int) string {
	doc := r.md.Parser().Parse(text.NewReader(source))
	return strings.Join(r.blocks(doc, source, width), "\n\n")
}

// blocks renders each block child of parent and returns the non-empty
// results. Callers decide how to join them.
func (r *renderer) blocks(parent ast.Node, source []byte, width int) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c, source, width); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *renderer) block(node ast.Node, source []byte, width int) string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(r.inline(n, source), width)

	case *ast.Heading:
		prefix := strings.Repeat("#", n.Level) + " "
		return wrap(r.heading.Render(prefix+r.inline(n, source)), width)

	case *ast.FencedCodeBlock:
		var b strings.Builder
		if lang := string(n.Language(source)); lang != "" {
			b.WriteString(r.muted.Render(lang))
			b.WriteByte('\n')
		}
		b.WriteString(r.codeLines(n.Lines(), source))
		return b.String()

	case *ast.CodeBlock:
		return r.codeLines(n.Lines(), source)

	case *ast.Blockquote:
		inner := strings.Join(r.blocks(n, source, max(width-len(quoteBar), minColumn)), "\n\n")
		bar := r.muted.Render(quoteBar)
		return prefixLines(inner, bar, bar)

	case *ast.List:
		return r.list(n, source, width)

	case *ast.ThematicBreak:
		return r.muted.Render(strings.Repeat("─", min(width, 40)))

	case *ast.HTMLBlock:
		return strings.TrimRight(rawLines(n.Lines(), source), "\n")

	default:
		return strings.Join(r.blocks(n, source, width), "\n\n")
	}
}

func (r *renderer) codeLines(lines *text.Segments, source []byte) string {
	bar := r.muted.Render(codeBar)
	rows := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(source)), "\n")
		rows = append(rows, bar+r.code.Render(line))
	}
	return strings.Join(rows, "\n")
}

func (r *renderer) list(n *ast.List, source []byte, width int) string {
	sep := "\n"
	if !n.IsTight {
		sep = "\n\n"
	}
	var items []string
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := bullet
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		// Bullet is multi-byte; indent by display columns.
		indent := strings.Repeat(" ", lipgloss.Width(marker))
		body := r.blocks(item, source, max(width-lipgloss.Width(marker), minColumn))
		items = append(items, prefixLines(strings.Join(body, sep), marker, indent))
	}
	return strings.Join(items, sep)
}

func (r *renderer) inline(parent ast.Node, source []byte) string {
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.writeInline(&b, c, source)
	}
	return b.String()
}

func (r *renderer) writeInline(b *strings.Builder, node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inline(n, source)
		if n.Level >= 2 {
			b.WriteString(r.strong.Render(inner))
		} else {
			b.WriteString(r.em.Render(inner))
		}

	case *extast.Strikethrough:
		b.WriteString(r.strike.Render(r.inline(n, source)))

	case *ast.CodeSpan:
		b.WriteString(r.code.Render(r.inline(n, source)))

	case *ast.Link:
		label := r.inline(n, source)
		dest := string(n.Destination)
		b.WriteString(r.link.Render(label))
		if dest != "" && dest != label {
			b.WriteString(" " + r.muted.Render("<"+dest+">"))
		}

	case *ast.AutoLink:
		b.WriteString(r.link.Render(string(n.URL(source))))

	case *ast.Image:
		b.WriteString(r.muted.Render("[image: " + r.inline(n, source) + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.writeInline(b, c, source)
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// prefixLines prepends first to the first line of s and rest to every
// following line.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func rawLines(lines *text.Segments, source []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}
