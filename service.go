package ragchat

import (
	"context"
	"encoding/json"
)

// ChatService posts a user message to the remote backend and returns the
// generated reply text.
type ChatService interface {
	Chat(ctx context.Context, content string) (string, error)
}

// UploadService sends a file to the remote backend. The returned payload is
// whatever JSON document the backend answered with.
type UploadService interface {
	Upload(ctx context.Context, f File) (json.RawMessage, error)
}
