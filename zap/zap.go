// Package zap logs session events to a structured zap logger.
package zap

import (
	"errors"

	"github.com/fwojciec/ragchat"
	"go.uber.org/zap"
)

// NewEventHandler returns an event handler that writes each session event to
// logger. Upload outcomes are logged at Info, failures at Error and the turn
// lifecycle at Debug. A nil logger discards everything.
func NewEventHandler(logger *zap.Logger) func(ragchat.Event) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(e ragchat.Event) {
		switch e := e.(type) {
		case ragchat.EventFileSelected:
			logger.Debug("file selected",
				zap.String("name", e.Name),
				zap.Int("size", e.Size),
				zap.String("mime_type", e.MimeType))
		case ragchat.EventUploadStarted:
			logger.Info("upload started", zap.String("name", e.Name))
		case ragchat.EventUploadSucceeded:
			logger.Info("upload succeeded",
				zap.String("name", e.Name),
				zap.ByteString("payload", e.Payload))
		case ragchat.EventUploadFailed:
			logger.Error("upload failed",
				append([]zap.Field{zap.String("name", e.Name)}, errorFields(e.Err)...)...)
		case ragchat.EventTurnStarted:
			logger.Debug("turn started",
				zap.Int("turn", e.Turn),
				zap.Int("length", len(e.Text)))
		case ragchat.EventReplyReceived:
			logger.Debug("reply received",
				zap.Int("turn", e.Turn),
				zap.Int("length", len(e.Message.Text)))
		case ragchat.EventTurnFailed:
			logger.Error("turn failed",
				append([]zap.Field{zap.Int("turn", e.Turn)}, errorFields(e.Err)...)...)
		}
	}
}

func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var se *ragchat.ServiceError
	if errors.As(err, &se) {
		fields = append(fields, zap.Stringer("kind", se.Kind))
		if se.StatusCode != 0 {
			fields = append(fields, zap.Int("status", se.StatusCode))
		}
	}
	return fields
}
