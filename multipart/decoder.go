package multipart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/alexferl/bodyparser/stream"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrDecode is returned for bodies that are not valid multipart/form-data.
	ErrDecode = errors.New("malformed multipart body")

	// ErrMissingBoundary is returned when the Content-Type carries no boundary parameter.
	ErrMissingBoundary = fmt.Errorf("%w: missing boundary", ErrDecode)

	// ErrTooManyFields is returned when a body has more parts than allowed.
	ErrTooManyFields = fmt.Errorf("%w: too many fields", ErrDecode)
)

// EventKind identifies the type of a decoder event.
type EventKind uint8

const (
	EventField EventKind = iota
	EventFile
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventField:
		return "field"
	case EventFile:
		return "file"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is a single decoded part, or a terminal error.
type Event struct {
	Kind  EventKind
	Name  string
	Value string
	File  *File
	Err   error
}

// Options configures a Decoder.
type Options struct {
	// Limit is the maximum total body size (defaults to 32MB)
	Limit int64
	// MaxFileSize is the maximum size of a single file (defaults to Limit)
	MaxFileSize int64
	// MaxMemory is how many bytes of each file are kept in memory before spooling to disk (defaults to 10MB)
	MaxMemory int64
	// MaxFields is the maximum number of parts (defaults to 1000)
	MaxFields int
	// UploadDir is where spooled files are created (defaults to os.TempDir)
	UploadDir string
	// BufferSize is the capacity of the event channel (defaults to 16)
	BufferSize int
	// OnFileBegin is called before a file part is read. It may set file.Path to
	// choose the destination, or return an error to reject the upload.
	OnFileBegin func(field string, file *File) error
}

// DefaultOptions contains the default decoder configuration.
var DefaultOptions = Options{
	Limit:      32 << 20,
	MaxMemory:  10 << 20,
	MaxFields:  1000,
	BufferSize: 16,
}

// Decoder turns a multipart/form-data stream into a sequence of events.
type Decoder struct {
	opts Options
}

// NewDecoder creates a Decoder, filling unset options from DefaultOptions.
func NewDecoder(opts Options) *Decoder {
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions.Limit
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = opts.Limit
	}
	if opts.MaxMemory < 0 {
		opts.MaxMemory = DefaultOptions.MaxMemory
	}
	if opts.MaxFields <= 0 {
		opts.MaxFields = DefaultOptions.MaxFields
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions.BufferSize
	}
	return &Decoder{opts: opts}
}

// Decode reads body in a separate goroutine and emits one event per part.
// The channel is closed once the body is exhausted; a failure is reported as a
// single EventError before closing. Cancelling ctx stops decoding.
func (d *Decoder) Decode(ctx context.Context, body io.Reader, boundary string) <-chan Event {
	ch := make(chan Event, d.opts.BufferSize)

	go func() {
		defer close(ch)
		if err := d.decode(ctx, body, boundary, ch); err != nil {
			select {
			case ch <- Event{Kind: EventError, Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}

func (d *Decoder) decode(ctx context.Context, body io.Reader, boundary string, ch chan<- Event) error {
	if boundary == "" {
		return ErrMissingBoundary
	}

	mr := multipart.NewReader(stream.LimitReader(body, d.opts.Limit), boundary)
	parts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return wrapError(err)
		}

		parts++
		if parts > d.opts.MaxFields {
			_ = part.Close()
			return fmt.Errorf("%w: limit is %d", ErrTooManyFields, d.opts.MaxFields)
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		var ev Event
		if part.FileName() == "" {
			value, err := io.ReadAll(part)
			if err != nil {
				_ = part.Close()
				return wrapError(err)
			}
			ev = Event{Kind: EventField, Name: name, Value: string(value)}
		} else {
			f, err := d.readFile(part, name)
			if err != nil {
				_ = part.Close()
				return err
			}
			ev = Event{Kind: EventFile, Name: name, File: f}
		}
		_ = part.Close()

		select {
		case ch <- ev:
		case <-ctx.Done():
			if ev.File != nil {
				_ = ev.File.Remove()
			}
			return ctx.Err()
		}
	}
}

func (d *Decoder) readFile(part *multipart.Part, name string) (*File, error) {
	f := &File{
		ID:          uuid.NewString(),
		Field:       name,
		Filename:    part.FileName(),
		Header:      part.Header,
		ContentType: part.Header.Get("Content-Type"),
	}

	if d.opts.OnFileBegin != nil {
		if err := d.opts.OnFileBegin(name, f); err != nil {
			return nil, fmt.Errorf("%w: file %q rejected: %v", ErrDecode, f.Filename, err)
		}
	}

	r := stream.LimitReader(part, d.opts.MaxFileSize)

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, wrapError(err)
	}
	head = head[:n]
	f.DetectedType = mimetype.Detect(head).String()

	if err := d.store(f, head, r); err != nil {
		_ = f.Remove()
		return nil, err
	}
	return f, nil
}

// store writes the file content to memory, or to disk when it is larger than
// MaxMemory or the OnFileBegin hook chose a path.
func (d *Decoder) store(f *File, head []byte, r io.Reader) error {
	if f.Path == "" {
		var buf bytes.Buffer
		buf.Write(head)
		if _, err := io.CopyN(&buf, r, d.opts.MaxMemory-int64(len(head))+1); err != nil && err != io.EOF {
			return wrapError(err)
		}
		if int64(buf.Len()) <= d.opts.MaxMemory {
			f.content = buf.Bytes()
			f.Size = int64(buf.Len())
			return nil
		}
		head = buf.Bytes()
	}

	var out *os.File
	var err error
	if f.Path != "" {
		out, err = os.Create(f.Path)
	} else {
		out, err = os.CreateTemp(d.opts.UploadDir, "bodyparser-*")
	}
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	f.Path = out.Name()

	written, err := out.Write(head)
	if err == nil {
		var copied int64
		copied, err = io.Copy(out, r)
		f.Size = int64(written) + copied
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return wrapError(err)
	}
	return nil
}

func wrapError(err error) error {
	if errors.Is(err, stream.ErrTooLarge) {
		return err
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w: limit is %d bytes", stream.ErrTooLarge, mbe.Limit)
	}
	return fmt.Errorf("%w: %v", ErrDecode, err)
}
