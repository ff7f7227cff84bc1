package config

import (
	"net/http"

	"github.com/alexferl/bodyparser/log"
)

// Config holds the middleware configuration used by bodyparser.New.
type Config struct {
	// DisableDefaultMiddlewares disables the built-in Recover middleware when true.
	// The body parser itself is always installed.
	// Default: false
	DisableDefaultMiddlewares bool

	// Middlewares are extra middlewares run before the body parser, e.g. SkipBodyParser.
	// Default: nil
	Middlewares []func(http.Handler) http.Handler

	// BodyParserOptions contains options for configuring the body parser middleware.
	BodyParserOptions []BodyParserOption

	// RecoverOptions contains options for configuring the panic recovery middleware.
	RecoverOptions []RecoverOption

	// BodyParser holds the built configuration for the body parser middleware.
	BodyParser BodyParserConfig

	// Recover holds the built configuration for the panic recovery middleware.
	Recover RecoverConfig

	// Logger is the logger instance used by the middlewares.
	// Default: nil (a default logger will be created if nil)
	Logger log.Logger
}

// DefaultConfig contains all default values used by Config.
var DefaultConfig = Config{
	DisableDefaultMiddlewares: false,
	Middlewares:               nil,
	BodyParserOptions:         bodyParserConfigToOptions(DefaultBodyParserConfig),
	RecoverOptions:            recoverConfigToOptions(DefaultRecoverConfig),
	Logger:                    nil, // means use log.NewDefaultLogger
}

// Build applies all configured options to populate the middleware configuration structs.
func (c *Config) Build() {
	c.BodyParser = DefaultBodyParserConfig
	for _, opt := range c.BodyParserOptions {
		opt(&c.BodyParser)
	}

	c.Recover = DefaultRecoverConfig
	for _, opt := range c.RecoverOptions {
		opt(&c.Recover)
	}
}

// Option is a function that sets a field in Config.
type Option func(*Config)

// WithDisableDefaultMiddlewares disables the built-in Recover middleware.
func WithDisableDefaultMiddlewares() Option {
	return func(c *Config) {
		c.DisableDefaultMiddlewares = true
	}
}

// WithMiddlewares adds middlewares that run before the body parser.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw...)
	}
}

// WithBodyParserOptions configures the body parser middleware.
func WithBodyParserOptions(opts ...BodyParserOption) Option {
	return func(c *Config) {
		c.BodyParserOptions = append([]BodyParserOption{}, opts...)
	}
}

// WithRecoverOptions configures the panic recovery middleware.
func WithRecoverOptions(opts ...RecoverOption) Option {
	return func(c *Config) {
		c.RecoverOptions = append([]RecoverOption{}, opts...)
	}
}

// WithLogger sets a custom logger instance.
func WithLogger(logger log.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
