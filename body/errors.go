package body

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexferl/bodyparser/multipart"
	"github.com/alexferl/bodyparser/stream"
)

// Request-time error causes. Use errors.Is on a *ParseError to test for them.
var (
	ErrTooLarge                   = stream.ErrTooLarge
	ErrMalformed                  = stream.ErrMalformed
	ErrUnsupportedCharset         = stream.ErrUnsupportedCharset
	ErrUnsupportedContentEncoding = stream.ErrUnsupportedContentEncoding
	ErrAborted                    = stream.ErrAborted
	ErrLengthMismatch             = stream.ErrLengthMismatch
	ErrDecode                     = multipart.ErrDecode
)

// ParseError is returned when a request body cannot be read or interpreted.
type ParseError struct {
	// Kind is the kind whose settings were in effect (xml for XML bodies)
	Kind Kind
	// Err is the cause, one of the package error variables or a context error
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bodyparser: %s body: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status that describes the error.
func (e *ParseError) StatusCode() int {
	return StatusCode(e.Err)
}

// StatusCode maps a body parsing error to an HTTP status:
// 413 for oversized bodies, 415 for unsupported charsets or content encodings,
// 400 for malformed or incomplete bodies and 500 for anything else.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedCharset), errors.Is(err, ErrUnsupportedContentEncoding):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrMalformed),
		errors.Is(err, ErrDecode),
		errors.Is(err, ErrAborted),
		errors.Is(err, ErrLengthMismatch),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
