package config

import "net/http"

// RecoverConfig allows customization of panic recovery
type RecoverConfig struct {
	// StackSize is the maximum size of the stack trace in bytes (defaults to 4KB)
	StackSize int64
	// EnableStackTrace determines if stack traces should be included (defaults to true)
	EnableStackTrace bool
	// ErrorHandler writes the response for recovered errors (defaults to a bare status code)
	ErrorHandler func(err error, w http.ResponseWriter, r *http.Request)
}

// DefaultRecoverConfig contains the default panic recovery configuration
var DefaultRecoverConfig = RecoverConfig{
	StackSize:        4 << 10, // 4KB
	EnableStackTrace: true,
	ErrorHandler:     nil,
}

// recoverConfigToOptions converts a RecoverConfig struct to a slice of RecoverOption functions
func recoverConfigToOptions(cfg RecoverConfig) []RecoverOption {
	return []RecoverOption{
		WithRecoverStackSize(cfg.StackSize),
		WithRecoverEnableStackTrace(cfg.EnableStackTrace),
		WithRecoverErrorHandler(cfg.ErrorHandler),
	}
}

// RecoverOption configures panic recovery middleware
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size in bytes
func WithRecoverStackSize(size int64) RecoverOption {
	return func(c *RecoverConfig) {
		c.StackSize = size
	}
}

// WithRecoverEnableStackTrace enables or disables stack trace inclusion
func WithRecoverEnableStackTrace(enabled bool) RecoverOption {
	return func(c *RecoverConfig) {
		c.EnableStackTrace = enabled
	}
}

// WithRecoverErrorHandler sets the function that renders recovered errors
func WithRecoverErrorHandler(fn func(err error, w http.ResponseWriter, r *http.Request)) RecoverOption {
	return func(c *RecoverConfig) {
		c.ErrorHandler = fn
	}
}
