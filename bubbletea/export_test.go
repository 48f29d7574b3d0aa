package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// Spinning reports whether the typing indicator is animating.
func Spinning(m Model) bool {
	return m.spinning
}

// Listen exports the queue listener for testing.
func Listen(q *Events) func() any {
	cmd := q.listen()
	return func() any { return cmd() }
}
