package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexferl/bodyparser/multipart"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestBodyParserConfig_DefaultValues(t *testing.T) {
	cfg := DefaultBodyParserConfig

	assert.Equal(t, []string{http.MethodPost, http.MethodPut, http.MethodPatch}, cfg.ParsedMethods)
	assert.Equal(t, []string{"json", "form"}, cfg.EnableTypes)
	assert.Empty(t, cfg.ExtendTypes)
	assert.Equal(t, ByteSize(1<<20), cfg.JSONLimit)
	assert.Equal(t, ByteSize(56<<10), cfg.FormLimit)
	assert.Equal(t, ByteSize(1<<20), cfg.TextLimit)
	assert.Equal(t, ByteSize(1<<20), cfg.XMLLimit)
	assert.Equal(t, ByteSize(32<<20), cfg.MultipartLimit)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.True(t, cfg.JSONStrict)
	assert.False(t, cfg.PatchRequest)
	assert.False(t, cfg.EnableRawChecking)
	assert.Nil(t, cfg.DetectJSON)
	assert.Nil(t, cfg.OnError)
	assert.Equal(t, 5, cfg.FormDepth)
	assert.Equal(t, 20, cfg.FormArrayLimit)
	assert.Equal(t, 1000, cfg.FormParameterLimit)
	assert.Equal(t, ByteSize(10<<20), cfg.MultipartMaxMemory)
	assert.Equal(t, 1000, cfg.MultipartMaxFields)
	assert.Nil(t, cfg.TracerProvider)
	assert.Nil(t, cfg.MetricsRegisterer)
}

func TestBodyParserOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	tp := noop.NewTracerProvider()
	detected := false

	cfg := DefaultBodyParserConfig
	for _, opt := range []BodyParserOption{
		WithBodyParserParsedMethods([]string{"DELETE"}),
		WithBodyParserEnableTypes([]string{"text"}),
		WithBodyParserJSONLimit(1),
		WithBodyParserFormLimit(2),
		WithBodyParserTextLimit(3),
		WithBodyParserXMLLimit(4),
		WithBodyParserMultipartLimit(5),
		WithBodyParserEncoding("latin1"),
		WithBodyParserJSONStrict(false),
		WithBodyParserDetectJSON(func(*http.Request) bool { detected = true; return true }),
		WithBodyParserOnError(func(error, http.ResponseWriter, *http.Request) {}),
		WithBodyParserPatchRequest(true),
		WithBodyParserEnableRawChecking(true),
		WithBodyParserExemptPaths([]string{"/hooks/"}),
		WithBodyParserFormDepth(2),
		WithBodyParserFormArrayLimit(3),
		WithBodyParserFormParameterLimit(4),
		WithBodyParserMultipartMaxFileSize(6),
		WithBodyParserMultipartMaxMemory(7),
		WithBodyParserMultipartMaxFields(8),
		WithBodyParserMultipartUploadDir("/tmp/uploads"),
		WithBodyParserMultipartKeepFiles(true),
		WithBodyParserOnFileBegin(func(string, *multipart.File) error { return nil }),
		WithBodyParserTracerProvider(tp),
		WithBodyParserMetricsRegisterer(reg),
	} {
		opt(&cfg)
	}

	assert.Equal(t, []string{"DELETE"}, cfg.ParsedMethods)
	assert.Equal(t, []string{"text"}, cfg.EnableTypes)
	assert.Equal(t, ByteSize(1), cfg.JSONLimit)
	assert.Equal(t, ByteSize(2), cfg.FormLimit)
	assert.Equal(t, ByteSize(3), cfg.TextLimit)
	assert.Equal(t, ByteSize(4), cfg.XMLLimit)
	assert.Equal(t, ByteSize(5), cfg.MultipartLimit)
	assert.Equal(t, "latin1", cfg.Encoding)
	assert.False(t, cfg.JSONStrict)
	require.NotNil(t, cfg.DetectJSON)
	cfg.DetectJSON(httptest.NewRequest(http.MethodPost, "/", nil))
	assert.True(t, detected)
	assert.NotNil(t, cfg.OnError)
	assert.True(t, cfg.PatchRequest)
	assert.True(t, cfg.EnableRawChecking)
	assert.Equal(t, []string{"/hooks/"}, cfg.ExemptPaths)
	assert.Equal(t, 2, cfg.FormDepth)
	assert.Equal(t, 3, cfg.FormArrayLimit)
	assert.Equal(t, 4, cfg.FormParameterLimit)
	assert.Equal(t, ByteSize(6), cfg.MultipartMaxFileSize)
	assert.Equal(t, ByteSize(7), cfg.MultipartMaxMemory)
	assert.Equal(t, 8, cfg.MultipartMaxFields)
	assert.Equal(t, "/tmp/uploads", cfg.MultipartUploadDir)
	assert.True(t, cfg.MultipartKeepFiles)
	assert.NotNil(t, cfg.OnFileBegin)
	assert.Equal(t, tp, cfg.TracerProvider)
	assert.Equal(t, reg, cfg.MetricsRegisterer)
}

func TestWithBodyParserExtendType(t *testing.T) {
	cfg := DefaultBodyParserConfig
	WithBodyParserExtendType("json", "application/x-javascript")(&cfg)
	WithBodyParserExtendType("json", "application/ld+json")(&cfg)
	WithBodyParserExtendType("text", "text/html")(&cfg)

	assert.Equal(t, map[string][]string{
		"json": {"application/x-javascript", "application/ld+json"},
		"text": {"text/html"},
	}, cfg.ExtendTypes)
	assert.Empty(t, DefaultBodyParserConfig.ExtendTypes, "defaults must not be mutated")
}

func TestBodyParserConfigToOptions(t *testing.T) {
	src := DefaultBodyParserConfig
	src.JSONLimit = 42
	src.EnableTypes = []string{"multipart"}
	src.MultipartKeepFiles = true

	cfg := BodyParserConfig{}
	for _, opt := range bodyParserConfigToOptions(src) {
		opt(&cfg)
	}

	assert.Equal(t, ByteSize(42), cfg.JSONLimit)
	assert.Equal(t, []string{"multipart"}, cfg.EnableTypes)
	assert.True(t, cfg.MultipartKeepFiles)
	assert.Equal(t, src.FormLimit, cfg.FormLimit)
	assert.Equal(t, src.Encoding, cfg.Encoding)
}

func TestError(t *testing.T) {
	err := &Error{Field: "enableTypes", Value: "yaml", Err: ErrUnsupportedKind}
	assert.Equal(t, "config: enableTypes: yaml: unsupported body kind", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(ErrInvalidValue))
}
