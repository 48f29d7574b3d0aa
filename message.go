package ragchat

import (
	"slices"
	"time"
)

// Message is a single chat turn entry. Messages are values and are never
// mutated once appended to a Transcript.
//
// Turn is the sequence id allocated when the user message was sent. A bot
// reply carries the Turn of the user message that requested it.
type Message struct {
	Turn      int
	Sender    Sender
	Text      string
	Timestamp time.Time
}

// Transcript is the append-only record of messages in creation order.
// The zero value is an empty transcript ready to use. Transcript is not safe
// for concurrent use; Session guards its own copy.
type Transcript struct {
	messages []Message
}

// NewTranscript returns a Transcript holding msgs in the given order.
func NewTranscript(msgs ...Message) Transcript {
	return Transcript{messages: slices.Clone(msgs)}
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Len returns the number of messages.
func (t Transcript) Len() int { return len(t.messages) }

// Last returns the most recently appended message.
func (t Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Log returns a copy of the messages in creation order. Replies appear in
// the order their requests resolved, which is not necessarily the order in
// which they were sent.
func (t Transcript) Log() []Message {
	return slices.Clone(t.messages)
}

// Threaded returns a copy of the messages in display order: grouped by turn
// in the order turns were sent, with each user message followed by its reply.
// Messages within a turn keep their creation order.
func (t Transcript) Threaded() []Message {
	out := slices.Clone(t.messages)
	slices.SortStableFunc(out, func(a, b Message) int {
		if a.Turn != b.Turn {
			return a.Turn - b.Turn
		}
		return senderRank(a.Sender) - senderRank(b.Sender)
	})
	return out
}

func senderRank(s Sender) int {
	if s == SenderUser {
		return 0
	}
	return 1
}
