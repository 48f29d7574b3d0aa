// Package mock provides test doubles for ragchat interfaces using function
// fields.
package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/ragchat"
)

// Interface compliance checks.
var (
	_ ragchat.ChatService   = (*ChatService)(nil)
	_ ragchat.UploadService = (*UploadService)(nil)
)

// ChatService is a test double for ragchat.ChatService.
// Set ChatFn before calling Chat.
type ChatService struct {
	ChatFn func(ctx context.Context, content string) (string, error)
}

// Chat delegates to ChatFn.
func (s *ChatService) Chat(ctx context.Context, content string) (string, error) {
	return s.ChatFn(ctx, content)
}

// UploadService is a test double for ragchat.UploadService.
// Set UploadFn before calling Upload.
type UploadService struct {
	UploadFn func(ctx context.Context, f ragchat.File) (json.RawMessage, error)
}

// Upload delegates to UploadFn.
func (s *UploadService) Upload(ctx context.Context, f ragchat.File) (json.RawMessage, error) {
	return s.UploadFn(ctx, f)
}
