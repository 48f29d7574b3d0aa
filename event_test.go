package ragchat_test

import (
	"testing"

	"github.com/fwojciec/ragchat"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []ragchat.Event{
		ragchat.EventFileSelected{Name: "a.txt"},
		ragchat.EventUploadStarted{Name: "a.txt"},
		ragchat.EventUploadSucceeded{Name: "a.txt"},
		ragchat.EventUploadFailed{Name: "a.txt"},
		ragchat.EventTurnStarted{Turn: 1},
		ragchat.EventReplyReceived{Turn: 1},
		ragchat.EventTurnFailed{Turn: 1},
	}
	assert.Len(t, events, 7, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case ragchat.EventFileSelected:
		case ragchat.EventUploadStarted:
		case ragchat.EventUploadSucceeded:
		case ragchat.EventUploadFailed:
		case ragchat.EventTurnStarted:
		case ragchat.EventReplyReceived:
		case ragchat.EventTurnFailed:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
