package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/ragchat"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/fwojciec/ragchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree against backendURL and returns stdout and
// stderr.
func execute(t *testing.T, backendURL string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(map[string]string{"BACKEND_URL": backendURL})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	logFile := filepath.Join(t.TempDir(), "ragchat.log")
	cmd.SetArgs(append(args, "--log-file", logFile))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func chatServer(t *testing.T, handler func(content string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatgpt" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status, body := handler(req.Content)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAskCommand(t *testing.T) {
	t.Parallel()

	t.Run("prints the reply", func(t *testing.T) {
		t.Parallel()
		got := make(chan string, 1)
		srv := chatServer(t, func(content string) (int, string) {
			got <- content
			return http.StatusOK, `{"response":"The report covers Q3."}`
		})

		stdout, _, err := execute(t, srv.URL, "ask", "what", "is", "in", "the", "report?")

		require.NoError(t, err)
		assert.Equal(t, "what is in the report?", <-got)
		assert.Equal(t, "The report covers Q3.\n", stdout)
	})

	t.Run("backend failure is returned", func(t *testing.T) {
		t.Parallel()
		srv := chatServer(t, func(string) (int, string) {
			return http.StatusInternalServerError, `{"error":"model unavailable"}`
		})

		stdout, _, err := execute(t, srv.URL, "ask", "hello")

		require.Error(t, err)
		assert.Equal(t, ragchat.ErrorStatus, ragchat.ErrorKindOf(err))
		assert.Contains(t, err.Error(), "model unavailable")
		assert.Empty(t, stdout)
	})

	t.Run("blank message is rejected", func(t *testing.T) {
		t.Parallel()
		srv := chatServer(t, func(string) (int, string) {
			t.Error("unexpected request")
			return http.StatusOK, `{"response":""}`
		})

		_, _, err := execute(t, srv.URL, "ask", "  ")

		require.ErrorIs(t, err, ragchat.ErrEmptyMessage)
	})

	t.Run("transcript is exported", func(t *testing.T) {
		t.Parallel()
		srv := chatServer(t, func(content string) (int, string) {
			return http.StatusOK, `{"response":"re: ` + content + `"}`
		})
		path := filepath.Join(t.TempDir(), "out", "transcript.json")

		_, _, err := execute(t, srv.URL, "ask", "hi", "--transcript", path)
		require.NoError(t, err)

		exp, err := ragjson.Load(path)
		require.NoError(t, err)
		assert.NotEmpty(t, exp.ID)
		assert.Equal(t, srv.URL, exp.BackendURL)
		require.Len(t, exp.Messages, 2)
		assert.Equal(t, "hi", exp.Messages[0].Text)
		assert.Equal(t, "re: hi", exp.Messages[1].Text)
	})

	t.Run("missing backend url", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "", "ask", "hi")
		require.ErrorIs(t, err, ragchat.ErrValidation)
	})
}

type uploadRecorder struct {
	mu    sync.Mutex
	names []string
}

func (u *uploadRecorder) uploaded() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.names...)
}

func (u *uploadRecorder) server(t *testing.T, fail string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		u.mu.Lock()
		u.names = append(u.names, header.Filename)
		u.mu.Unlock()
		if header.Filename == fail {
			http.Error(w, `{"error":"unsupported file"}`, http.StatusUnsupportedMediaType)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"stored":"`+header.Filename+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0o600))
	}
}

func TestUploadCommand(t *testing.T) {
	t.Parallel()

	t.Run("uploads every match in order", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, "a.txt", "b.txt", "notes/c.txt", "skip.md")
		rec := &uploadRecorder{}
		srv := rec.server(t, "")

		stdout, _, err := execute(t, srv.URL, "upload", filepath.Join(dir, "**", "*.txt"))

		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, rec.uploaded())
		assert.Equal(t,
			filepath.Join(dir, "a.txt")+`: {"stored":"a.txt"}`+"\n"+
				filepath.Join(dir, "b.txt")+`: {"stored":"b.txt"}`+"\n"+
				filepath.Join(dir, "notes", "c.txt")+`: {"stored":"c.txt"}`+"\n",
			stdout)
	})

	t.Run("failures are reported and counted", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFiles(t, dir, "a.txt", "b.txt")
		rec := &uploadRecorder{}
		srv := rec.server(t, "b.txt")

		stdout, stderr, err := execute(t, srv.URL, "upload", filepath.Join(dir, "*.txt"))

		require.EqualError(t, err, "1 of 2 uploads failed")
		assert.Equal(t, []string{"a.txt", "b.txt"}, rec.uploaded())
		assert.Contains(t, stdout, "a.txt")
		assert.Contains(t, stderr, filepath.Join(dir, "b.txt")+": upload: HTTP 415")
	})

	t.Run("pattern without matches", func(t *testing.T) {
		t.Parallel()
		rec := &uploadRecorder{}
		srv := rec.server(t, "")

		_, _, err := execute(t, srv.URL, "upload", filepath.Join(t.TempDir(), "*.pdf"))

		require.ErrorContains(t, err, "no files match")
		assert.Empty(t, rec.uploaded())
	})
}

func TestBatchUploader_OpenFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var uploaded []string
	upload := &mock.UploadService{
		UploadFn: func(_ context.Context, f ragchat.File) (json.RawMessage, error) {
			mu.Lock()
			uploaded = append(uploaded, f.Name)
			mu.Unlock()
			return json.RawMessage(`{"stored":"` + f.Name + `"}`), nil
		},
	}
	var stdout, stderr bytes.Buffer
	u := &batchUploader{
		open: func(path string) (ragchat.File, error) {
			if path == "gone.txt" {
				return ragchat.File{}, errors.New("fs: file vanished")
			}
			return ragchat.File{Name: path, Data: []byte(path)}, nil
		},
		stdout: &stdout,
		stderr: &stderr,
	}
	u.session = ragchat.NewSession(&mock.ChatService{}, upload, ragchat.WithEventHandler(u.handle))

	failed := u.run(context.Background(), []string{"a.txt", "gone.txt", "c.txt"})

	assert.Equal(t, 1, failed)
	mu.Lock()
	assert.Equal(t, []string{"a.txt", "c.txt"}, uploaded)
	mu.Unlock()
	assert.Equal(t, "a.txt: {\"stored\":\"a.txt\"}\nc.txt: {\"stored\":\"c.txt\"}\n", stdout.String())
	assert.Equal(t, "gone.txt: fs: file vanished\n", stderr.String())
}

func TestExpandPatterns_Deduplicates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	paths, err := expandPatterns([]string{filepath.Join(dir, "b.txt"), filepath.Join(dir, "*.txt")})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.txt")}, paths)
}

func TestTranscriptCommand(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "transcript.json")
	require.NoError(t, ragjson.Save(path, ragjson.Export{
		ID:         "exp-1",
		ExportedAt: ts,
		Messages: []ragchat.Message{
			{Turn: 1, Sender: ragchat.SenderUser, Text: "first", Timestamp: ts},
			{Turn: 2, Sender: ragchat.SenderUser, Text: "second", Timestamp: ts},
			{Turn: 2, Sender: ragchat.SenderBot, Text: "re: second", Timestamp: ts},
			{Turn: 3, Sender: ragchat.SenderUser, Text: "third", Timestamp: ts},
			{Turn: 1, Sender: ragchat.SenderBot, Text: "re: first", Timestamp: ts},
		},
		Failures: map[int]string{3: "chat: HTTP 502"},
	}))

	t.Run("log order", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, "", "transcript", path)
		require.NoError(t, err)
		assert.Equal(t, strings.Join([]string{
			"# exp-1 (2026-03-02 09:00:00)",
			"",
			"[1] user: first",
			"",
			"[2] user: second",
			"",
			"[2] bot: re: second",
			"",
			"[3] user: third",
			"[3] failed: chat: HTTP 502",
			"",
			"[1] bot: re: first",
			"",
		}, "\n"), stdout)
	})

	t.Run("threaded order", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, "", "transcript", path, "--threaded")
		require.NoError(t, err)
		first := strings.Index(stdout, "[1] user: first")
		reFirst := strings.Index(stdout, "[1] bot: re: first")
		second := strings.Index(stdout, "[2] user: second")
		assert.Less(t, first, reFirst)
		assert.Less(t, reFirst, second)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "", "transcript", filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorContains(t, err, "load transcript")
	})
}
