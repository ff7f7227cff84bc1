package log

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestFieldHelpers(t *testing.T) {
	t.Run("F helper", func(t *testing.T) {
		f := F("key", "value")
		if f.Key != "key" {
			t.Errorf("expected key 'key', got '%s'", f.Key)
		}
		if f.Value != "value" {
			t.Errorf("expected value 'value', got '%v'", f.Value)
		}
	})

	t.Run("E helper", func(t *testing.T) {
		e := E("some error")
		if e.Key != "error" {
			t.Errorf("expected key 'error', got '%s'", e.Key)
		}
	})

	t.Run("P helper", func(t *testing.T) {
		p := P("panic msg")
		if p.Key != "panic" {
			t.Errorf("expected key 'panic', got '%s'", p.Key)
		}
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]any
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("log line is not JSON: %q: %v", line, err)
	}
	return out
}

func TestDefaultLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("msg") }, "debug"},
		{"info", func(l Logger) { l.Info("msg") }, "info"},
		{"warn", func(l Logger) { l.Warn("msg") }, "warn"},
		{"error", func(l Logger) { l.Error("msg") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewWriterLogger(&buf))

			out := decodeLine(t, &buf)
			if out["level"] != tt.level {
				t.Errorf("expected level %q, got %v", tt.level, out["level"])
			}
			if out["message"] != "msg" {
				t.Errorf("expected message 'msg', got %v", out["message"])
			}
			if _, ok := out["time"]; !ok {
				t.Error("expected a timestamp")
			}
		})
	}
}

func TestDefaultLogger_FieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Info("typed",
		E(errors.New("boom")),
		F("str", "value"),
		F("int", 42),
		F("int64", int64(7)),
		F("float", 1.5),
		F("bool", true),
		F("map", map[string]any{"a": "b"}),
	)

	out := decodeLine(t, &buf)
	if out["error"] != "boom" {
		t.Errorf("expected error 'boom', got %v", out["error"])
	}
	if out["str"] != "value" {
		t.Errorf("expected str 'value', got %v", out["str"])
	}
	if out["int"] != float64(42) {
		t.Errorf("expected int 42, got %v", out["int"])
	}
	if out["int64"] != float64(7) {
		t.Errorf("expected int64 7, got %v", out["int64"])
	}
	if out["float"] != 1.5 {
		t.Errorf("expected float 1.5, got %v", out["float"])
	}
	if out["bool"] != true {
		t.Errorf("expected bool true, got %v", out["bool"])
	}
	if m, ok := out["map"].(map[string]any); !ok || m["a"] != "b" {
		t.Errorf("expected map field, got %v", out["map"])
	}
}

func TestDefaultLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf)
	child := base.WithFields(F("component", "bodyparser"))

	child.Info("child")
	out := decodeLine(t, &buf)
	if out["component"] != "bodyparser" {
		t.Errorf("expected component field, got %v", out["component"])
	}

	buf.Reset()
	base.Info("base")
	out = decodeLine(t, &buf)
	if _, ok := out["component"]; ok {
		t.Error("expected parent logger to be unchanged")
	}
}

func TestDefaultLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf).WithContext(context.Background())
	if logger == nil {
		t.Fatal("WithContext returned nil")
	}
	logger.Warn("ctx")
	if !strings.Contains(buf.String(), `"ctx"`) {
		t.Errorf("expected message to be written, got %q", buf.String())
	}
}

func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected filtered output, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestDefaultLogger_Panic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Panic to panic")
		}
		if !strings.Contains(buf.String(), "fatal-ish") {
			t.Errorf("expected panic message to be logged, got %q", buf.String())
		}
	}()
	logger.Panic("fatal-ish")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("nothing", F("k", "v"))
	logger.WithFields(F("a", 1)).Error("nothing")
}
