package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ragchat/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("reads content and base name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

		f, err := fs.Open(path)
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", f.Name)
		assert.Equal(t, []byte("hello"), f.Data)
		assert.Contains(t, f.MimeType, "text/plain")
	})

	t.Run("sniffs content over extension", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "image.txt")
		require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

		f, err := fs.Open(path)
		require.NoError(t, err)
		assert.Equal(t, "image/png", f.MimeType)
	})

	t.Run("empty file is allowed", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		f, err := fs.Open(path)
		require.NoError(t, err)
		assert.Equal(t, 0, f.Size())
		assert.Equal(t, "application/octet-stream", f.MimeType)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := fs.Open(filepath.Join(t.TempDir(), "nope.pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := fs.Open(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestDetectMimeType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "image/png", fs.DetectMimeType("x.bin", pngHeader))
	assert.Equal(t, "application/pdf", fs.DetectMimeType("doc", []byte("%PDF-1.7\n")))
	assert.Equal(t, "application/json", fs.DetectMimeType("data.json", []byte(`{"a":1}`)))
	assert.Equal(t, "application/octet-stream", fs.DetectMimeType("data.unknownext", []byte("zz")))
}
