// Package bodyparser parses HTTP request bodies (JSON, urlencoded forms, text, XML and
// multipart) into values attached to the request context.
//
// New wraps a handler with the full chain: panic recovery, any extra middlewares and
// the body parser. Handlers read the result with middleware.GetBody or Bind.Body.
package bodyparser

import (
	"errors"
	"net/http"

	"github.com/alexferl/bodyparser/body"
	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
	"github.com/alexferl/bodyparser/middleware"
	"github.com/go-playground/validator/v10"
)

// New returns next wrapped with the body parser and its default middlewares.
// Parse failures are answered with a problem detail response by ErrorHandler unless
// a Recover error handler or an OnError handler is configured.
// It returns a *config.Error if the configuration is invalid.
func New(next http.Handler, opts ...config.Option) (http.Handler, error) {
	cfg := config.DefaultConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.Build()

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewDefaultLogger()
	}

	if cfg.Recover.ErrorHandler == nil {
		cfg.RecoverOptions = append(append([]config.RecoverOption{}, cfg.RecoverOptions...),
			config.WithRecoverErrorHandler(ErrorHandler))
	}

	mws, err := middleware.DefaultMiddlewares(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Body parser installed",
		log.F("enable_types", cfg.BodyParser.EnableTypes),
		log.F("parsed_methods", cfg.BodyParser.ParsedMethods),
	)

	return middleware.Chain(next, mws...), nil
}

// ErrorHandler renders err as an RFC 9457 problem detail. Body parsing errors use the
// status from body.StatusCode, validation errors from Bind.Body are answered with 422
// and anything else with 500.
// It can be used as the body parser OnError handler or the Recover ErrorHandler.
func ErrorHandler(err error, w http.ResponseWriter, r *http.Request) {
	var (
		perr    *body.ParseError
		invalid validator.ValidationErrors
		problem *ProblemDetail
	)

	switch {
	case errors.As(err, &perr):
		problem = NewProblemDetail(perr.StatusCode(), perr.Err.Error())
		problem.Set("kind", perr.Kind.String())
	case errors.As(err, &invalid):
		details := make([]ValidationError, 0, len(invalid))
		for _, fe := range invalid {
			details = append(details, ValidationError{
				Detail: fe.Error(),
				Field:  fe.Field(),
			})
		}
		problem = NewValidationProblemDetail("request body failed validation", details)
	case errors.Is(err, ErrNoBody):
		problem = NewProblemDetail(http.StatusBadRequest, err.Error())
	default:
		problem = NewProblemDetail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	problem.Instance = r.URL.Path
	_ = R.ProblemDetail(w, problem)
}
