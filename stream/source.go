package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Source is a request body together with the headers needed to read it.
type Source struct {
	// Body is the raw request body stream
	Body io.Reader
	// Length is the declared Content-Length, or -1 when unknown
	Length int64
	// ContentEncoding is the Content-Encoding header value
	ContentEncoding string
}

// FromRequest builds a Source from an HTTP request.
func FromRequest(r *http.Request) Source {
	body := io.Reader(r.Body)
	if r.Body == nil {
		body = http.NoBody
	}
	return Source{
		Body:            body,
		Length:          r.ContentLength,
		ContentEncoding: r.Header.Get("Content-Encoding"),
	}
}

// Options controls how a body is read and interpreted.
type Options struct {
	// Limit is the maximum number of (inflated) bytes read; <= 0 means unlimited
	Limit int64
	// Encoding is the character set of the body (defaults to utf-8)
	Encoding string
	// Strict only accepts objects and arrays as top-level JSON values
	Strict bool
	// Depth is the maximum nesting depth of bracketed form keys
	Depth int
	// ArrayLimit is the largest index honored for a[0]=x style form keys
	ArrayLimit int
	// ParameterLimit is the maximum number of form parameters decoded
	ParameterLimit int
}

// Result holds the raw text of a body and its interpretation.
type Result struct {
	Raw    string
	Parsed any
}

// sourceError marks failures of the underlying body stream, as opposed to
// failures of a decompressor reading from it.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

type sourceReader struct {
	r io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &sourceError{err: err}
	}
	return n, err
}

// CheckEncoding reports whether name is a character set that can be decoded.
func CheckEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// read consumes the whole body, enforcing the limit and decoding the charset.
func read(src Source, opts Options) (string, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return "", err
	}

	identity := normalizeContentEncoding(src.ContentEncoding) == "identity"
	if identity && opts.Limit > 0 && src.Length > opts.Limit {
		return "", fmt.Errorf("%w: content length %d exceeds limit of %d bytes", ErrTooLarge, src.Length, opts.Limit)
	}

	body := src.Body
	if body == nil {
		body = http.NoBody
	}

	r, closeFn, err := inflate(sourceReader{r: body}, src.ContentEncoding)
	if err != nil {
		return "", err
	}
	defer closeFn()

	data, err := io.ReadAll(LimitReader(r, opts.Limit))
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		if identity && src.Length >= 0 && errors.Is(err, io.ErrUnexpectedEOF) {
			return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrLengthMismatch, src.Length, len(data))
		}
		return "", classifyReadError(err, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	if identity && src.Length >= 0 && int64(len(data)) != src.Length {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrLengthMismatch, src.Length, len(data))
	}

	if enc != nil {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	return string(data), nil
}

// classifyReadError maps stream failures onto the package errors. Errors that
// did not come from the body stream itself are replaced by fallback.
func classifyReadError(err error, fallback error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, mbe.Limit)
	}
	var se *sourceError
	if errors.As(err, &se) {
		if errors.Is(se.err, ErrTooLarge) {
			return se.err
		}
		return fmt.Errorf("%w: %v", ErrAborted, se.err)
	}
	return fallback
}

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t\r\n") == ""
}
