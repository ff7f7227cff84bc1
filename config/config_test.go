package config

import (
	"net/http"
	"testing"

	"github.com/alexferl/bodyparser/log"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig
	if cfg.DisableDefaultMiddlewares {
		t.Error("expected DisableDefaultMiddlewares to be false")
	}
	if cfg.Middlewares != nil {
		t.Error("expected Middlewares to be nil")
	}
	if cfg.Logger != nil {
		t.Error("expected Logger to be nil")
	}
	if len(cfg.BodyParserOptions) == 0 {
		t.Error("expected BodyParserOptions to be initialized with defaults")
	}
	if len(cfg.RecoverOptions) == 0 {
		t.Error("expected RecoverOptions to be initialized with defaults")
	}
}

func TestConfig_Build(t *testing.T) {
	cfg := DefaultConfig
	WithBodyParserOptions(
		WithBodyParserJSONLimit(2*MB),
		WithBodyParserEnableTypes([]string{"json"}),
	)(&cfg)
	WithRecoverOptions(WithRecoverStackSize(1024))(&cfg)
	cfg.Build()

	if cfg.BodyParser.JSONLimit != 2*MB {
		t.Errorf("expected JSONLimit = %s, got %s", 2*MB, cfg.BodyParser.JSONLimit)
	}
	if len(cfg.BodyParser.EnableTypes) != 1 || cfg.BodyParser.EnableTypes[0] != "json" {
		t.Errorf("expected EnableTypes = [json], got %v", cfg.BodyParser.EnableTypes)
	}
	if cfg.BodyParser.FormLimit != DefaultBodyParserConfig.FormLimit {
		t.Errorf("expected untouched FormLimit to keep its default, got %s", cfg.BodyParser.FormLimit)
	}
	if cfg.Recover.StackSize != 1024 {
		t.Errorf("expected StackSize = 1024, got %d", cfg.Recover.StackSize)
	}
	if !cfg.Recover.EnableStackTrace {
		t.Error("expected EnableStackTrace to keep its default")
	}
}

func TestConfigOptions(t *testing.T) {
	t.Run("disable default middlewares", func(t *testing.T) {
		cfg := DefaultConfig
		WithDisableDefaultMiddlewares()(&cfg)
		if !cfg.DisableDefaultMiddlewares {
			t.Error("expected DisableDefaultMiddlewares to be true")
		}
	})

	t.Run("middlewares append", func(t *testing.T) {
		noop := func(next http.Handler) http.Handler { return next }
		cfg := DefaultConfig
		WithMiddlewares(noop)(&cfg)
		WithMiddlewares(noop, noop)(&cfg)
		if len(cfg.Middlewares) != 3 {
			t.Errorf("expected 3 middlewares, got %d", len(cfg.Middlewares))
		}
		if len(DefaultConfig.Middlewares) != 0 {
			t.Error("expected DefaultConfig to be left untouched")
		}
	})

	t.Run("options replace defaults", func(t *testing.T) {
		cfg := DefaultConfig
		WithBodyParserOptions(WithBodyParserPatchRequest(true))(&cfg)
		if len(cfg.BodyParserOptions) != 1 {
			t.Errorf("expected 1 body parser option, got %d", len(cfg.BodyParserOptions))
		}
		WithRecoverOptions()(&cfg)
		if len(cfg.RecoverOptions) != 0 {
			t.Errorf("expected no recover options, got %d", len(cfg.RecoverOptions))
		}
	})

	t.Run("logger", func(t *testing.T) {
		logger := log.NewNopLogger()
		cfg := DefaultConfig
		WithLogger(logger)(&cfg)
		if cfg.Logger != logger {
			t.Error("expected logger to be set")
		}
	})
}
