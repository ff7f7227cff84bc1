package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexferl/bodyparser/body"
	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
)

type mockLogger struct {
	debugLogs   []string
	infoLogs    []string
	warnLogs    []string
	warnFields  [][]log.Field
	errorLogs   []string
	errorFields [][]log.Field
}

func (m *mockLogger) Debug(msg string, fields ...log.Field) { m.debugLogs = append(m.debugLogs, msg) }
func (m *mockLogger) Info(msg string, fields ...log.Field)  { m.infoLogs = append(m.infoLogs, msg) }
func (m *mockLogger) Warn(msg string, fields ...log.Field) {
	m.warnLogs = append(m.warnLogs, msg)
	m.warnFields = append(m.warnFields, fields)
}
func (m *mockLogger) Error(msg string, fields ...log.Field) {
	m.errorLogs = append(m.errorLogs, msg)
	m.errorFields = append(m.errorFields, fields)
}
func (m *mockLogger) Panic(msg string, fields ...log.Field)      {}
func (m *mockLogger) Fatal(msg string, fields ...log.Field)      {}
func (m *mockLogger) WithFields(fields ...log.Field) log.Logger  { return m }
func (m *mockLogger) WithContext(ctx context.Context) log.Logger { return m }

func fieldValue(fields []log.Field, key string) (any, bool) {
	for _, field := range fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

func panicHandler(panicValue any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(panicValue)
	})
}

func normalHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			panic(fmt.Errorf("failed to write test response: %w", err))
		}
	})
}

func TestRecover_NoPanic(t *testing.T) {
	logger := &mockLogger{}
	handler := Recover(logger)(normalHandler())
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if len(logger.errorLogs) != 0 {
		t.Errorf("Expected no error logs, got %d", len(logger.errorLogs))
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %s", w.Body.String())
	}
}

func TestRecover_WithPanic(t *testing.T) {
	logger := &mockLogger{}
	handler := Recover(logger)(panicHandler("test panic"))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "test-req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if len(logger.errorLogs) != 1 {
		t.Fatalf("Expected 1 error log, got %d", len(logger.errorLogs))
	}
	if logger.errorLogs[0] != "Recovered from panic" {
		t.Errorf("Expected message 'Recovered from panic', got %s", logger.errorLogs[0])
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	fields := logger.errorFields[0]
	if v, _ := fieldValue(fields, "panic"); v != "test panic" {
		t.Errorf("Expected panic value to be logged, got %v", v)
	}
	if v, _ := fieldValue(fields, "request_id"); v != "test-req-123" {
		t.Errorf("Expected request ID to be logged, got %v", v)
	}
	if v, _ := fieldValue(fields, "stack"); v == nil || v.(string) == "" {
		t.Error("Expected stack trace to be logged")
	}
}

func TestRecover_HTTPAbortHandler(t *testing.T) {
	logger := &mockLogger{}
	handler := Recover(logger)(panicHandler(http.ErrAbortHandler))
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("Expected http.ErrAbortHandler to be re-panicked, got %v", r)
		}
	}()
	handler.ServeHTTP(w, req)
	t.Error("Expected panic to be re-raised")
}

func TestRecover_UpgradeConnection(t *testing.T) {
	logger := &mockLogger{}
	handler := Recover(logger)(panicHandler("websocket panic"))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Connection", "Upgrade")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Errorf("Expected no status code change for upgrade connection, got %d", w.Code)
	}
	if len(logger.errorLogs) != 1 {
		t.Errorf("Expected panic to be logged even for upgrade connections")
	}
}

func TestRecover_StackTraceOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      []config.RecoverOption
		wantStack bool
	}{
		{"custom size", []config.RecoverOption{config.WithRecoverStackSize(1024)}, true},
		{"invalid size falls back", []config.RecoverOption{config.WithRecoverStackSize(0)}, true},
		{"disabled", []config.RecoverOption{config.WithRecoverEnableStackTrace(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			handler := Recover(logger, tt.opts...)(panicHandler("stack"))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

			if len(logger.errorLogs) != 1 {
				t.Fatalf("Expected 1 error log, got %d", len(logger.errorLogs))
			}
			_, found := fieldValue(logger.errorFields[0], "stack")
			if found != tt.wantStack {
				t.Errorf("Expected stack present=%v, got %v", tt.wantStack, found)
			}
		})
	}
}

func TestRecover_ErrorValue(t *testing.T) {
	logger := &mockLogger{}
	testError := errors.New("test error panic")
	handler := Recover(logger)(panicHandler(testError))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if len(logger.errorLogs) != 1 {
		t.Fatalf("Expected 1 error log, got %d", len(logger.errorLogs))
	}
	if v, _ := fieldValue(logger.errorFields[0], "panic"); v != testError {
		t.Errorf("Expected error value to be logged, got %v", v)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRecover_StatusFromError(t *testing.T) {
	logger := &mockLogger{}
	perr := &body.ParseError{Kind: body.KindJSON, Err: body.ErrTooLarge}
	handler := Recover(logger)(panicHandler(fmt.Errorf("wrapped: %w", perr)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, w.Code)
	}
	if len(logger.errorLogs) != 0 {
		t.Errorf("Expected client errors not to be logged as errors, got %v", logger.errorLogs)
	}
	if len(logger.warnLogs) != 1 {
		t.Fatalf("Expected 1 warn log, got %d", len(logger.warnLogs))
	}
	if _, found := fieldValue(logger.warnFields[0], "stack"); found {
		t.Error("Did not expect a stack trace for client errors")
	}
	if v, _ := fieldValue(logger.warnFields[0], "status"); v != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status field %d, got %v", http.StatusRequestEntityTooLarge, v)
	}
}

func TestRecover_ErrorHandler(t *testing.T) {
	var got error
	handler := Recover(&mockLogger{}, config.WithRecoverErrorHandler(func(err error, w http.ResponseWriter, r *http.Request) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("error", func(t *testing.T) {
		perr := &body.ParseError{Kind: body.KindForm, Err: body.ErrMalformed}
		w := httptest.NewRecorder()
		handler(panicHandler(perr)).ServeHTTP(w, httptest.NewRequest("POST", "/", nil))

		if w.Code != http.StatusTeapot {
			t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
		}
		if got != perr {
			t.Errorf("Expected handler to receive the panic error, got %v", got)
		}
	})

	t.Run("non error", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(panicHandler(42)).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		if got == nil || got.Error() != "panic: 42" {
			t.Errorf("Expected wrapped panic value, got %v", got)
		}
	})
}

func TestDefaultRecoverConfig(t *testing.T) {
	cfg := config.DefaultRecoverConfig
	expectedStackSize := int64(4 << 10)
	if cfg.StackSize != expectedStackSize {
		t.Errorf("Expected default stack size %d, got %d", expectedStackSize, cfg.StackSize)
	}
	if !cfg.EnableStackTrace {
		t.Error("Expected default EnableStackTrace to be true")
	}
	if cfg.ErrorHandler != nil {
		t.Error("Expected no default ErrorHandler")
	}
}
