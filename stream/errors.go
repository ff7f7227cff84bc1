package stream

import "errors"

var (
	// ErrTooLarge is returned when a body exceeds its configured limit.
	ErrTooLarge = errors.New("request entity too large")

	// ErrMalformed is returned when a body cannot be parsed in its declared format.
	ErrMalformed = errors.New("malformed request body")

	// ErrUnsupportedCharset is returned when the configured encoding is unknown.
	ErrUnsupportedCharset = errors.New("unsupported charset")

	// ErrUnsupportedContentEncoding is returned for Content-Encoding values that cannot be inflated.
	ErrUnsupportedContentEncoding = errors.New("unsupported content encoding")

	// ErrAborted is returned when the client stops sending before the body is complete.
	ErrAborted = errors.New("request aborted")

	// ErrLengthMismatch is returned when the body length differs from Content-Length.
	ErrLengthMismatch = errors.New("request size did not match content length")
)
