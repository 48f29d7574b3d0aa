// Package bubbletea provides a Bubble Tea TUI for a ragchat session.
package bubbletea

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ragchat"
)

// OpenFunc loads the file at path so it can be selected for upload.
type OpenFunc func(path string) (ragchat.File, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SessionEventMsg wraps a session event for delivery to the Bubble Tea model.
type SessionEventMsg struct {
	Event ragchat.Event
}

// Events is an unbounded queue that carries session events from the
// goroutines that emit them to the Bubble Tea update loop. Publish never
// blocks, so it is safe to register as a session event handler even though
// some events are emitted from inside Update.
type Events struct {
	mu    sync.Mutex
	queue []ragchat.Event

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewEvents creates an empty Events queue.
func NewEvents() *Events {
	return &Events{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Publish enqueues e. It has the signature of a session event handler.
func (q *Events) Publish(e ragchat.Event) {
	q.mu.Lock()
	q.queue = append(q.queue, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close releases a pending listener. Events published afterwards are never
// delivered.
func (q *Events) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// listen waits for the next queued event. It returns nil once the queue is
// closed.
func (q *Events) listen() tea.Cmd {
	return func() tea.Msg {
		for {
			q.mu.Lock()
			if len(q.queue) > 0 {
				e := q.queue[0]
				q.queue = q.queue[1:]
				q.mu.Unlock()
				return SessionEventMsg{Event: e}
			}
			q.mu.Unlock()

			select {
			case <-q.wake:
			case <-q.done:
				return nil
			}
		}
	}
}
