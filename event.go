package ragchat

import "encoding/json"

// Event is a sealed interface representing a Session state transition.
// Validation failures are not events; they are returned synchronously.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventFileSelected signals that a file became the pending upload.
type EventFileSelected struct {
	Name     string
	Size     int
	MimeType string
}

func (EventFileSelected) event() {}

// EventUploadStarted signals that an upload request was issued.
type EventUploadStarted struct {
	Name string
}

func (EventUploadStarted) event() {}

// EventUploadSucceeded carries the JSON payload returned by the backend.
type EventUploadSucceeded struct {
	Name    string
	Payload json.RawMessage
}

func (EventUploadSucceeded) event() {}

// EventUploadFailed signals that an upload request failed.
type EventUploadFailed struct {
	Name string
	Err  error
}

func (EventUploadFailed) event() {}

// EventTurnStarted signals that a user message was appended and its chat
// request issued.
type EventTurnStarted struct {
	Turn int
	Text string
}

func (EventTurnStarted) event() {}

// EventReplyReceived signals that a bot reply was appended for Turn.
type EventReplyReceived struct {
	Turn    int
	Message Message
}

func (EventReplyReceived) event() {}

// EventTurnFailed signals that the chat request for Turn failed. No bot
// message is appended for a failed turn.
type EventTurnFailed struct {
	Turn int
	Err  error
}

func (EventTurnFailed) event() {}

// Interface compliance checks.
var (
	_ Event = EventFileSelected{}
	_ Event = EventUploadStarted{}
	_ Event = EventUploadSucceeded{}
	_ Event = EventUploadFailed{}
	_ Event = EventTurnStarted{}
	_ Event = EventReplyReceived{}
	_ Event = EventTurnFailed{}
)
