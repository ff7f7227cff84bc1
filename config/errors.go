package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind is returned when a configuration names a body kind that does not exist.
	ErrUnsupportedKind = errors.New("unsupported body kind")

	// ErrInvalidValue is returned when a configuration value has the wrong shape.
	ErrInvalidValue = errors.New("invalid value")
)

// Error is returned when a body parser is constructed with an invalid configuration.
// It is never produced while serving requests.
type Error struct {
	// Field is the configuration key that failed, e.g. "enableTypes" or "extendTypes.json"
	Field string
	// Value is the offending value
	Value any
	// Err is the underlying cause, usually wrapping ErrUnsupportedKind or ErrInvalidValue
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v: %v", e.Field, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
