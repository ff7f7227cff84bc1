package config

import (
	"net/http"

	"github.com/alexferl/bodyparser/multipart"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// BodyParserConfig allows customization of request body parsing.
type BodyParserConfig struct {
	// ParsedMethods lists the HTTP methods whose bodies are parsed (defaults to POST, PUT, PATCH)
	ParsedMethods []string

	// EnableTypes lists the body kinds that are parsed: json, form, text, xml, multipart
	// (defaults to json and form)
	EnableTypes []string

	// ExtendTypes adds media types to a kind's built-in list, keyed by kind name
	ExtendTypes map[string][]string

	// JSONLimit is the maximum size of a JSON body (defaults to 1MB)
	JSONLimit ByteSize
	// FormLimit is the maximum size of a urlencoded body (defaults to 56KB)
	FormLimit ByteSize
	// TextLimit is the maximum size of a text body (defaults to 1MB)
	TextLimit ByteSize
	// XMLLimit is the maximum size of an XML body (defaults to 1MB)
	XMLLimit ByteSize
	// MultipartLimit is the maximum total size of a multipart body (defaults to 32MB)
	MultipartLimit ByteSize

	// Encoding is the character set used to decode text bodies (defaults to utf-8)
	Encoding string

	// JSONStrict only accepts objects and arrays as top-level JSON values (defaults to true)
	JSONStrict bool

	// DetectJSON forces a request to be parsed as JSON when it returns true, regardless of Content-Type
	DetectJSON func(r *http.Request) bool

	// OnError receives request-time parse errors. When nil, errors propagate to the
	// surrounding error handling (the Recover middleware).
	// If OnError writes a response the request is aborted, otherwise the next handler runs.
	OnError func(err error, w http.ResponseWriter, r *http.Request)

	// PatchRequest mirrors the parsed body onto the raw request holder and skips
	// requests whose raw holder already carries a body
	PatchRequest bool

	// EnableRawChecking adopts a body already present on the raw request holder instead of parsing
	EnableRawChecking bool

	// ExemptPaths contains paths that are never parsed
	ExemptPaths []string

	// FormDepth is the maximum nesting depth of bracketed form keys (defaults to 5)
	FormDepth int
	// FormArrayLimit is the largest index honored for a[0]=x style keys (defaults to 20)
	FormArrayLimit int
	// FormParameterLimit is the maximum number of form parameters decoded (defaults to 1000)
	FormParameterLimit int

	// MultipartMaxFileSize is the maximum size of a single uploaded file (defaults to MultipartLimit)
	MultipartMaxFileSize ByteSize
	// MultipartMaxMemory is how much of each file is kept in memory before spooling to disk (defaults to 10MB)
	MultipartMaxMemory ByteSize
	// MultipartMaxFields is the maximum number of parts in a multipart body (defaults to 1000)
	MultipartMaxFields int
	// MultipartUploadDir is where spooled files are written (defaults to os.TempDir)
	MultipartUploadDir string
	// MultipartKeepFiles keeps spooled files after the request completes (defaults to false)
	MultipartKeepFiles bool
	// OnFileBegin is called before each file part is read; it may set the destination path or reject the file
	OnFileBegin func(field string, file *multipart.File) error

	// TracerProvider creates the tracer used for parse spans (defaults to the global provider)
	TracerProvider trace.TracerProvider

	// MetricsRegisterer registers the parse metrics; metrics are disabled when nil
	MetricsRegisterer prometheus.Registerer
}

// DefaultBodyParserConfig contains the default values for body parsing.
var DefaultBodyParserConfig = BodyParserConfig{
	ParsedMethods:        []string{http.MethodPost, http.MethodPut, http.MethodPatch},
	EnableTypes:          []string{"json", "form"},
	ExtendTypes:          map[string][]string{},
	JSONLimit:            1 * MB,
	FormLimit:            56 * KB,
	TextLimit:            1 * MB,
	XMLLimit:             1 * MB,
	MultipartLimit:       32 * MB,
	Encoding:             "utf-8",
	JSONStrict:           true,
	DetectJSON:           nil,
	OnError:              nil,
	PatchRequest:         false,
	EnableRawChecking:    false,
	ExemptPaths:          []string{},
	FormDepth:            5,
	FormArrayLimit:       20,
	FormParameterLimit:   1000,
	MultipartMaxFileSize: 0, // means MultipartLimit
	MultipartMaxMemory:   10 * MB,
	MultipartMaxFields:   1000,
	MultipartUploadDir:   "",
	MultipartKeepFiles:   false,
}

// BodyParserOption configures the body parser middleware.
type BodyParserOption func(*BodyParserConfig)

// WithBodyParserParsedMethods sets the HTTP methods whose bodies are parsed.
func WithBodyParserParsedMethods(methods []string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.ParsedMethods = methods
	}
}

// WithBodyParserEnableTypes sets the body kinds that are parsed.
func WithBodyParserEnableTypes(kinds []string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.EnableTypes = kinds
	}
}

// WithBodyParserExtendTypes replaces the extra media types for each kind.
func WithBodyParserExtendTypes(types map[string][]string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.ExtendTypes = types
	}
}

// WithBodyParserExtendType adds media types to a single kind.
func WithBodyParserExtendType(kind string, types ...string) BodyParserOption {
	return func(c *BodyParserConfig) {
		ext := make(map[string][]string, len(c.ExtendTypes)+1)
		for k, v := range c.ExtendTypes {
			ext[k] = v
		}
		ext[kind] = append(append([]string{}, ext[kind]...), types...)
		c.ExtendTypes = ext
	}
}

// WithBodyParserJSONLimit sets the maximum JSON body size.
func WithBodyParserJSONLimit(limit ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.JSONLimit = limit
	}
}

// WithBodyParserFormLimit sets the maximum urlencoded body size.
func WithBodyParserFormLimit(limit ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.FormLimit = limit
	}
}

// WithBodyParserTextLimit sets the maximum text body size.
func WithBodyParserTextLimit(limit ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.TextLimit = limit
	}
}

// WithBodyParserXMLLimit sets the maximum XML body size.
func WithBodyParserXMLLimit(limit ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.XMLLimit = limit
	}
}

// WithBodyParserMultipartLimit sets the maximum total multipart body size.
func WithBodyParserMultipartLimit(limit ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartLimit = limit
	}
}

// WithBodyParserEncoding sets the character set used to decode bodies.
func WithBodyParserEncoding(encoding string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.Encoding = encoding
	}
}

// WithBodyParserJSONStrict enables or disables strict JSON parsing.
func WithBodyParserJSONStrict(strict bool) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.JSONStrict = strict
	}
}

// WithBodyParserDetectJSON sets a custom predicate that forces JSON parsing.
func WithBodyParserDetectJSON(fn func(r *http.Request) bool) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.DetectJSON = fn
	}
}

// WithBodyParserOnError sets the handler for request-time parse errors.
func WithBodyParserOnError(fn func(err error, w http.ResponseWriter, r *http.Request)) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.OnError = fn
	}
}

// WithBodyParserPatchRequest enables mirroring the parsed body onto the raw request holder.
func WithBodyParserPatchRequest(enabled bool) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.PatchRequest = enabled
	}
}

// WithBodyParserEnableRawChecking enables adopting a body already present on the raw request holder.
func WithBodyParserEnableRawChecking(enabled bool) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.EnableRawChecking = enabled
	}
}

// WithBodyParserExemptPaths sets paths that are never parsed.
func WithBodyParserExemptPaths(paths []string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.ExemptPaths = paths
	}
}

// WithBodyParserFormDepth sets the maximum nesting depth of form keys.
func WithBodyParserFormDepth(depth int) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.FormDepth = depth
	}
}

// WithBodyParserFormArrayLimit sets the largest honored form array index.
func WithBodyParserFormArrayLimit(limit int) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.FormArrayLimit = limit
	}
}

// WithBodyParserFormParameterLimit sets the maximum number of form parameters.
func WithBodyParserFormParameterLimit(limit int) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.FormParameterLimit = limit
	}
}

// WithBodyParserMultipartMaxFileSize sets the maximum size of a single uploaded file.
func WithBodyParserMultipartMaxFileSize(size ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartMaxFileSize = size
	}
}

// WithBodyParserMultipartMaxMemory sets how much of each file is buffered in memory.
func WithBodyParserMultipartMaxMemory(size ByteSize) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartMaxMemory = size
	}
}

// WithBodyParserMultipartMaxFields sets the maximum number of multipart parts.
func WithBodyParserMultipartMaxFields(n int) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartMaxFields = n
	}
}

// WithBodyParserMultipartUploadDir sets the directory spooled files are written to.
func WithBodyParserMultipartUploadDir(dir string) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartUploadDir = dir
	}
}

// WithBodyParserMultipartKeepFiles keeps spooled files after the request completes.
func WithBodyParserMultipartKeepFiles(keep bool) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MultipartKeepFiles = keep
	}
}

// WithBodyParserOnFileBegin sets a hook called before each uploaded file is read.
func WithBodyParserOnFileBegin(fn func(field string, file *multipart.File) error) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.OnFileBegin = fn
	}
}

// WithBodyParserTracerProvider sets the tracer provider used for parse spans.
func WithBodyParserTracerProvider(tp trace.TracerProvider) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.TracerProvider = tp
	}
}

// WithBodyParserMetricsRegisterer enables parse metrics on the given registerer.
func WithBodyParserMetricsRegisterer(reg prometheus.Registerer) BodyParserOption {
	return func(c *BodyParserConfig) {
		c.MetricsRegisterer = reg
	}
}

// bodyParserConfigToOptions converts a BodyParserConfig struct to a slice of BodyParserOption functions.
func bodyParserConfigToOptions(cfg BodyParserConfig) []BodyParserOption {
	return []BodyParserOption{
		WithBodyParserParsedMethods(cfg.ParsedMethods),
		WithBodyParserEnableTypes(cfg.EnableTypes),
		WithBodyParserExtendTypes(cfg.ExtendTypes),
		WithBodyParserJSONLimit(cfg.JSONLimit),
		WithBodyParserFormLimit(cfg.FormLimit),
		WithBodyParserTextLimit(cfg.TextLimit),
		WithBodyParserXMLLimit(cfg.XMLLimit),
		WithBodyParserMultipartLimit(cfg.MultipartLimit),
		WithBodyParserEncoding(cfg.Encoding),
		WithBodyParserJSONStrict(cfg.JSONStrict),
		WithBodyParserDetectJSON(cfg.DetectJSON),
		WithBodyParserOnError(cfg.OnError),
		WithBodyParserPatchRequest(cfg.PatchRequest),
		WithBodyParserEnableRawChecking(cfg.EnableRawChecking),
		WithBodyParserExemptPaths(cfg.ExemptPaths),
		WithBodyParserFormDepth(cfg.FormDepth),
		WithBodyParserFormArrayLimit(cfg.FormArrayLimit),
		WithBodyParserFormParameterLimit(cfg.FormParameterLimit),
		WithBodyParserMultipartMaxFileSize(cfg.MultipartMaxFileSize),
		WithBodyParserMultipartMaxMemory(cfg.MultipartMaxMemory),
		WithBodyParserMultipartMaxFields(cfg.MultipartMaxFields),
		WithBodyParserMultipartUploadDir(cfg.MultipartUploadDir),
		WithBodyParserMultipartKeepFiles(cfg.MultipartKeepFiles),
		WithBodyParserOnFileBegin(cfg.OnFileBegin),
		WithBodyParserTracerProvider(cfg.TracerProvider),
		WithBodyParserMetricsRegisterer(cfg.MetricsRegisterer),
	}
}
