package bubbletea

// MessageBlock is a renderable element of the transcript. View takes a
// width so the root model controls layout and blocks are testable in
// isolation.
type MessageBlock interface {
	View(width int) string
}
