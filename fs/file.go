// Package fs loads local files for upload.
package fs

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fwojciec/ragchat"
	"github.com/h2non/filetype"
)

const defaultMimeType = "application/octet-stream"

// Open reads the file at path into a [ragchat.File]. The MIME type is sniffed
// from the content first and falls back to the file extension.
func Open(path string) (ragchat.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ragchat.File{}, fmt.Errorf("fs: %w", err)
	}
	if info.IsDir() {
		return ragchat.File{}, fmt.Errorf("fs: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ragchat.File{}, fmt.Errorf("fs: %w", err)
	}
	name := filepath.Base(path)
	return ragchat.File{
		Name:     name,
		Data:     data,
		MimeType: DetectMimeType(name, data),
	}, nil
}

// DetectMimeType returns the MIME type of data. Magic numbers win over the
// extension of name; unknown content maps to application/octet-stream.
func DetectMimeType(name string, data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return defaultMimeType
}
