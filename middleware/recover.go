package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
)

// statusCoder is implemented by errors that describe their own HTTP status,
// such as *body.ParseError.
type statusCoder interface {
	StatusCode() int
}

// Recover is a middleware that recovers from panics, logs the panic (and a backtrace),
// and returns an error response if possible. Panics carrying an error that knows its
// HTTP status, such as a body parsing failure, are answered with that status and
// logged without a backtrace. It prints a request ID if one is provided.
func Recover(logger log.Logger, opts ...config.RecoverOption) func(http.Handler) http.Handler {
	cfg := config.DefaultRecoverConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.StackSize <= 0 {
		cfg.StackSize = config.DefaultRecoverConfig.StackSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				reqID := r.Header.Get("X-Request-Id")
				if reqID == "" {
					reqID = fmt.Sprintf("recover-%d", time.Now().UnixNano())
				}

				err, isErr := rvr.(error)
				if !isErr {
					err = fmt.Errorf("panic: %v", rvr)
				}

				status := http.StatusInternalServerError
				var sc statusCoder
				if isErr && errors.As(err, &sc) {
					status = sc.StatusCode()
				}

				fields := []log.Field{
					log.P(rvr),
					log.F("request_id", reqID),
					log.F("status", status),
				}

				if status >= http.StatusInternalServerError {
					if cfg.EnableStackTrace {
						stack := make([]byte, cfg.StackSize)
						length := runtime.Stack(stack, false)
						fields = append(fields, log.F("stack", string(stack[:length])))
					}
					logger.Error("Recovered from panic", fields...)
				} else {
					logger.Warn("Recovered from panic", fields...)
				}

				if r.Header.Get("Connection") == "Upgrade" {
					return
				}
				if cfg.ErrorHandler != nil {
					cfg.ErrorHandler(err, w, r)
					return
				}
				w.WriteHeader(status)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
