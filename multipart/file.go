package multipart

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/textproto"
	"os"
)

// File is an uploaded file. Small files are kept in memory, larger ones are
// spooled to disk; callers treat both the same through Open.
type File struct {
	// ID uniquely identifies the upload
	ID string
	// Field is the form field name the file was sent under
	Field string
	// Filename is the client supplied file name, without directories
	Filename string
	// Header holds the part headers
	Header textproto.MIMEHeader
	// ContentType is the client declared content type
	ContentType string
	// DetectedType is the content type sniffed from the first bytes of the file
	DetectedType string
	// Size is the file size in bytes
	Size int64
	// Path is where the file was written; empty while the file is held in memory
	Path string

	content []byte
}

// InMemory reports whether the file content is held in memory.
func (f *File) InMemory() bool {
	return f.Path == ""
}

// Open returns a reader over the file content.
func (f *File) Open() (io.ReadCloser, error) {
	if f.Path != "" {
		return os.Open(f.Path)
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

// Remove releases the file content, deleting it from disk if it was spooled.
func (f *File) Remove() error {
	f.content = nil
	if f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
