package middleware

import (
	"net/http"

	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
)

// DefaultMiddlewares returns the chain installed by bodyparser.New: Recover, the
// configured extra middlewares and BodyParser, outermost first. Recover is left out
// when cfg.DisableDefaultMiddlewares is set.
func DefaultMiddlewares(cfg config.Config, logger log.Logger) ([]func(http.Handler) http.Handler, error) {
	bodyParser, err := NewBodyParser(logger, cfg.BodyParserOptions...)
	if err != nil {
		return nil, err
	}

	var mws []func(http.Handler) http.Handler
	if !cfg.DisableDefaultMiddlewares {
		mws = append(mws, Recover(logger, cfg.RecoverOptions...))
	}
	mws = append(mws, cfg.Middlewares...)
	mws = append(mws, bodyParser)
	return mws, nil
}

// Chain wraps h with mws so that the first middleware is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
