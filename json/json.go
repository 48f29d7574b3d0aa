// Package json persists transcript exports as versioned JSON documents.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/ragchat"
)

// Export is a snapshot of a chat session's transcript. Failures maps the
// turn id of every failed chat request to its error text.
type Export struct {
	ID         string
	BackendURL string
	ExportedAt time.Time
	Messages   []ragchat.Message
	Failures   map[int]string
}

// envelope is the v1 wire format for an exported transcript.
type envelope struct {
	Version    int          `json:"version"`
	ID         string       `json:"id"`
	BackendURL string       `json:"backend_url,omitempty"`
	ExportedAt time.Time    `json:"exported_at"`
	Messages   []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message. Status and Error are
// only set on user messages whose turn failed.
type messageDTO struct {
	Turn      int       `json:"turn"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FromSession snapshots s. Messages are taken in creation order.
func FromSession(id, backendURL string, s *ragchat.Session, now time.Time) Export {
	msgs := s.Transcript().Log()
	failures := make(map[int]string)
	for _, m := range msgs {
		if m.Sender != ragchat.SenderUser {
			continue
		}
		if st, ok := s.TurnStatus(m.Turn); ok && st.State == ragchat.TurnFailed {
			failures[m.Turn] = errorText(st.Err)
		}
	}
	return Export{
		ID:         id,
		BackendURL: backendURL,
		ExportedAt: now,
		Messages:   msgs,
		Failures:   failures,
	}
}

// Marshal serializes e to JSON in v1 envelope format.
func Marshal(e Export) ([]byte, error) {
	env := envelope{
		Version:    1,
		ID:         e.ID,
		BackendURL: e.BackendURL,
		ExportedAt: e.ExportedAt,
		Messages:   make([]messageDTO, len(e.Messages)),
	}
	for i, m := range e.Messages {
		switch m.Sender {
		case ragchat.SenderUser, ragchat.SenderBot:
		default:
			return nil, fmt.Errorf("message %d: unknown sender %q", i, m.Sender)
		}
		dto := messageDTO{
			Turn:      m.Turn,
			Sender:    string(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if msg, failed := e.Failures[m.Turn]; failed && m.Sender == ragchat.SenderUser {
			dto.Status = ragchat.TurnFailed.String()
			dto.Error = msg
		}
		env.Messages[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// Unmarshal deserializes an Export from JSON in v1 envelope format.
func Unmarshal(data []byte) (Export, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Export{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Export{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	e := Export{
		ID:         env.ID,
		BackendURL: env.BackendURL,
		ExportedAt: env.ExportedAt,
		Messages:   make([]ragchat.Message, len(env.Messages)),
		Failures:   make(map[int]string),
	}
	for i, dto := range env.Messages {
		sender := ragchat.Sender(dto.Sender)
		switch sender {
		case ragchat.SenderUser, ragchat.SenderBot:
		default:
			return Export{}, fmt.Errorf("message %d: unknown sender %q", i, dto.Sender)
		}
		e.Messages[i] = ragchat.Message{
			Turn:      dto.Turn,
			Sender:    sender,
			Text:      dto.Text,
			Timestamp: dto.Timestamp,
		}
		if dto.Status == ragchat.TurnFailed.String() {
			e.Failures[dto.Turn] = dto.Error
		}
	}
	return e, nil
}

// Save writes e to a JSON file, creating parent directories as needed.
func Save(path string, e Export) error {
	data, err := Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads an Export from a JSON file.
func Load(path string) (Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, fmt.Errorf("read file: %w", err)
	}
	return Unmarshal(data)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
