package middleware

import (
	"net/http"

	"github.com/alexferl/bodyparser/body"
	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
)

// BodyParser creates a request body parsing middleware with optional configuration.
// It panics if the configuration is invalid; use NewBodyParser to get the error instead.
//
// Parse failures are passed to the configured OnError handler. If the handler writes a
// response the chain stops there, otherwise the next handler runs without a parsed body.
// Without an OnError handler the failure is raised as a panic carrying the *body.ParseError,
// to be turned into a response by Recover.
func BodyParser(logger log.Logger, opts ...config.BodyParserOption) func(http.Handler) http.Handler {
	mw, err := NewBodyParser(logger, opts...)
	if err != nil {
		panic(err)
	}
	return mw
}

// NewBodyParser is like BodyParser but returns configuration errors as a *config.Error.
func NewBodyParser(logger log.Logger, opts ...config.BodyParserOption) (func(http.Handler) http.Handler, error) {
	cfg := config.DefaultBodyParserConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	parser, err := body.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	cfg = parser.Config()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ro := body.RequestOptionsFromContext(r.Context())

			parsed, err := parser.Handle(r, ro)
			if err != nil {
				if cfg.OnError == nil {
					panic(err)
				}

				ew := &errorResponseWriter{ResponseWriter: w}
				cfg.OnError(err, ew, r)
				if ew.written {
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !cfg.MultipartKeepFiles {
				defer removeFiles(logger, r, parsed)
			}

			next.ServeHTTP(w, parsed)
		})
	}, nil
}

// removeFiles deletes the spooled uploads of a request parsed by this middleware.
func removeFiles(logger log.Logger, before, after *http.Request) {
	b, ok := body.FromContext(after.Context())
	if !ok || len(b.Files) == 0 {
		return
	}
	// bodies attached upstream belong to whoever attached them
	if prev, ok := body.FromContext(before.Context()); ok && prev == b {
		return
	}

	for _, f := range b.Files {
		if err := f.Remove(); err != nil && logger != nil {
			logger.Warn("Failed to remove uploaded file", log.E(err), log.F("path", f.Path))
		}
	}
}

// GetBody returns the parsed body attached to the request by BodyParser.
func GetBody(r *http.Request) (*body.Body, bool) {
	return body.FromContext(r.Context())
}

// GetRawBody returns the raw body text attached to the request.
func GetRawBody(r *http.Request) (string, bool) {
	return body.RawBodyFromContext(r.Context())
}

// errorResponseWriter records whether an error handler started a response.
type errorResponseWriter struct {
	http.ResponseWriter
	written bool
}

func (ew *errorResponseWriter) WriteHeader(code int) {
	ew.written = true
	ew.ResponseWriter.WriteHeader(code)
}

func (ew *errorResponseWriter) Write(data []byte) (int, error) {
	ew.written = true
	return ew.ResponseWriter.Write(data)
}

func (ew *errorResponseWriter) Unwrap() http.ResponseWriter {
	return ew.ResponseWriter
}
