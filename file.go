package ragchat

// File is a user-chosen local file staged for upload. It is never persisted.
type File struct {
	Name     string
	Data     []byte
	MimeType string
}

// Size returns the length of the file content in bytes.
func (f File) Size() int { return len(f.Data) }
