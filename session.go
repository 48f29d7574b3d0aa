package ragchat

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TurnState is the lifecycle state of a single chat turn.
type TurnState int

const (
	TurnPending TurnState = iota + 1 // Request issued, no answer yet.
	TurnReplied                      // Bot reply appended.
	TurnFailed                       // Request failed; no reply appended.
)

func (s TurnState) String() string {
	switch s {
	case TurnPending:
		return "pending"
	case TurnReplied:
		return "replied"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TurnStatus reports the state of a turn and, for failed turns, the error.
type TurnStatus struct {
	State TurnState
	Err   error
}

// Option configures a Session.
type Option func(*Session)

// WithEventHandler registers a callback that receives every Event emitted by
// the session. Handlers run in registration order on the goroutine that
// caused the transition, never while the session lock is held.
func WithEventHandler(h func(Event)) Option {
	return func(s *Session) {
		if h != nil {
			s.handlers = append(s.handlers, h)
		}
	}
}

// WithClock sets the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the chat client state machine. It owns the pending file, the
// transcript, the input buffer and the awaiting-reply state, and drives the
// two backend services.
//
// Operations that talk to the backend change local state synchronously and
// then issue their request on a background goroutine. Outcomes are reported
// through event handlers and reflected in the session state; Wait blocks
// until every request issued so far has resolved. Sending is never blocked by
// an outstanding reply.
//
// Session is safe for concurrent use.
type Session struct {
	chat     ChatService
	upload   UploadService
	handlers []func(Event)
	now      func() time.Time

	mu          sync.Mutex
	pending     *File
	transcript  Transcript
	input       string
	lastTurn    int
	outstanding int
	turns       map[int]TurnStatus

	wg sync.WaitGroup
}

// NewSession creates a Session that sends chat messages to chat and files to
// upload.
func NewSession(chat ChatService, upload UploadService, opts ...Option) *Session {
	s := &Session{
		chat:   chat,
		upload: upload,
		now:    time.Now,
		turns:  make(map[int]TurnStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectFile stages f as the pending upload, replacing any previous one.
// The file is not inspected.
func (s *Session) SelectFile(f File) {
	s.mu.Lock()
	s.pending = &f
	s.mu.Unlock()
	s.emit(EventFileSelected{Name: f.Name, Size: f.Size(), MimeType: f.MimeType})
}

// PendingFile returns the staged file, if any.
func (s *Session) PendingFile() (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return File{}, false
	}
	return *s.pending, true
}

// ClearFile drops the staged file. A successful upload does not clear it.
func (s *Session) ClearFile() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// UploadFile sends the pending file to the upload service. It returns
// ErrNoFileSelected without issuing a request when no file is staged.
// Otherwise it issues exactly one request in the background and returns nil;
// the outcome is reported as EventUploadSucceeded or EventUploadFailed.
// The transcript and the pending file are left untouched.
func (s *Session) UploadFile(ctx context.Context) error {
	f, ok := s.PendingFile()
	if !ok {
		return ErrNoFileSelected
	}
	s.emit(EventUploadStarted{Name: f.Name})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		payload, err := s.upload.Upload(ctx, f)
		if err != nil {
			s.emit(EventUploadFailed{Name: f.Name, Err: err})
			return
		}
		s.emit(EventUploadSucceeded{Name: f.Name, Payload: payload})
	}()
	return nil
}

// SetInput replaces the input buffer.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// Input returns the input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Submit sends the current input buffer. See SendMessage.
func (s *Session) Submit(ctx context.Context) (int, error) {
	return s.SendMessage(ctx, s.Input())
}

// SendMessage appends text as a user message and requests a reply.
//
// Text that is empty after trimming whitespace is rejected with
// ErrEmptyMessage and changes nothing. Otherwise, before returning, the user
// message is appended under a new turn id, the turn is marked pending and
// the input buffer is cleared. The chat request runs in the background; its
// reply is appended to the transcript when it resolves, tagged with the same
// turn id. A failed request appends nothing and marks the turn failed.
//
// The returned turn id is strictly increasing across calls.
func (s *Session) SendMessage(ctx context.Context, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyMessage
	}

	s.mu.Lock()
	s.lastTurn++
	turn := s.lastTurn
	s.transcript.Append(Message{
		Turn:      turn,
		Sender:    SenderUser,
		Text:      text,
		Timestamp: s.now(),
	})
	s.turns[turn] = TurnStatus{State: TurnPending}
	s.outstanding++
	s.input = ""
	s.mu.Unlock()

	s.emit(EventTurnStarted{Turn: turn, Text: text})

	s.wg.Add(1)
	go s.awaitReply(ctx, turn, text)
	return turn, nil
}

func (s *Session) awaitReply(ctx context.Context, turn int, text string) {
	defer s.wg.Done()

	reply, err := s.chat.Chat(ctx, text)

	s.mu.Lock()
	s.outstanding--
	if err != nil {
		s.turns[turn] = TurnStatus{State: TurnFailed, Err: err}
		s.mu.Unlock()
		s.emit(EventTurnFailed{Turn: turn, Err: err})
		return
	}
	msg := Message{
		Turn:      turn,
		Sender:    SenderBot,
		Text:      reply,
		Timestamp: s.now(),
	}
	s.transcript.Append(msg)
	s.turns[turn] = TurnStatus{State: TurnReplied}
	s.mu.Unlock()

	s.emit(EventReplyReceived{Turn: turn, Message: msg})
}

// AwaitingReply reports whether any chat request is outstanding.
func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstanding > 0
}

// Outstanding returns the number of chat requests that have not resolved.
func (s *Session) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstanding
}

// Transcript returns a snapshot of the transcript.
func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewTranscript(s.transcript.messages...)
}

// TurnStatus returns the status of turn. The boolean is false for turn ids
// the session never allocated.
func (s *Session) TurnStatus(turn int) (TurnStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.turns[turn]
	return st, ok
}

// Wait blocks until every request issued so far has resolved and its events
// have been delivered.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) emit(e Event) {
	for _, h := range s.handlers {
		h(e)
	}
}
