package body

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/alexferl/bodyparser/config"
	"github.com/alexferl/bodyparser/log"
	"github.com/alexferl/bodyparser/multipart"
	"github.com/alexferl/bodyparser/stream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/alexferl/bodyparser/body"

// ParseOptions are the settings applied when parsing one kind of body.
type ParseOptions struct {
	Limit          int64
	Encoding       string
	Strict         bool
	Depth          int
	ArrayLimit     int
	ParameterLimit int
}

func (o ParseOptions) streamOptions() stream.Options {
	return stream.Options{
		Limit:          o.Limit,
		Encoding:       o.Encoding,
		Strict:         o.Strict,
		Depth:          o.Depth,
		ArrayLimit:     o.ArrayLimit,
		ParameterLimit: o.ParameterLimit,
	}
}

// Result is the outcome of parsing one request body.
type Result struct {
	Kind   Kind
	Parsed any
	Raw    string
	HasRaw bool
	Files  []*multipart.File
}

// Parser classifies, parses and attaches request bodies.
type Parser struct {
	cfg        config.BodyParserConfig
	logger     log.Logger
	classifier *Classifier
	options    map[Kind]ParseOptions
	methods    map[string]struct{}
	decoder    *multipart.Decoder
	tracer     trace.Tracer
	metrics    *metrics
}

// New validates cfg and builds a Parser. Zero valued limits and lists fall
// back to config.DefaultBodyParserConfig. Invalid settings yield a *config.Error.
func New(cfg config.BodyParserConfig, logger log.Logger) (*Parser, error) {
	cfg = withDefaults(cfg)
	if logger == nil {
		logger = log.NewNopLogger()
	}

	enabled, err := BuildEnabledKinds(cfg.EnableTypes)
	if err != nil {
		return nil, err
	}

	types, err := BuildMimeTypes(cfg.ExtendTypes)
	if err != nil {
		return nil, err
	}

	if err := stream.CheckEncoding(cfg.Encoding); err != nil {
		return nil, &config.Error{Field: "encoding", Value: cfg.Encoding, Err: fmt.Errorf("%w: %v", config.ErrInvalidValue, err)}
	}

	m, err := newMetrics(cfg.MetricsRegisterer)
	if err != nil {
		return nil, &config.Error{Field: "metricsRegisterer", Value: cfg.MetricsRegisterer, Err: err}
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	methods := make(map[string]struct{}, len(cfg.ParsedMethods))
	for _, method := range cfg.ParsedMethods {
		methods[strings.ToUpper(method)] = struct{}{}
	}

	base := ParseOptions{
		Encoding:       cfg.Encoding,
		Depth:          cfg.FormDepth,
		ArrayLimit:     cfg.FormArrayLimit,
		ParameterLimit: cfg.FormParameterLimit,
	}
	options := map[Kind]ParseOptions{
		KindJSON:      withLimit(base, cfg.JSONLimit),
		KindForm:      withLimit(base, cfg.FormLimit),
		KindText:      withLimit(base, cfg.TextLimit),
		KindXML:       withLimit(base, cfg.XMLLimit),
		KindMultipart: withLimit(base, cfg.MultipartLimit),
	}
	jsonOpts := options[KindJSON]
	jsonOpts.Strict = cfg.JSONStrict
	options[KindJSON] = jsonOpts

	return &Parser{
		cfg:        cfg,
		logger:     logger,
		classifier: NewClassifier(types, enabled, cfg.DetectJSON),
		options:    options,
		methods:    methods,
		decoder: multipart.NewDecoder(multipart.Options{
			Limit:       cfg.MultipartLimit.Int64(),
			MaxFileSize: cfg.MultipartMaxFileSize.Int64(),
			MaxMemory:   cfg.MultipartMaxMemory.Int64(),
			MaxFields:   cfg.MultipartMaxFields,
			UploadDir:   cfg.MultipartUploadDir,
			OnFileBegin: cfg.OnFileBegin,
		}),
		tracer:  tp.Tracer(tracerName),
		metrics: m,
	}, nil
}

func withLimit(o ParseOptions, limit config.ByteSize) ParseOptions {
	o.Limit = limit.Int64()
	return o
}

func withDefaults(cfg config.BodyParserConfig) config.BodyParserConfig {
	def := config.DefaultBodyParserConfig

	if cfg.ParsedMethods == nil {
		cfg.ParsedMethods = def.ParsedMethods
	}
	if cfg.EnableTypes == nil {
		cfg.EnableTypes = def.EnableTypes
	}
	if cfg.JSONLimit <= 0 {
		cfg.JSONLimit = def.JSONLimit
	}
	if cfg.FormLimit <= 0 {
		cfg.FormLimit = def.FormLimit
	}
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = def.TextLimit
	}
	if cfg.XMLLimit <= 0 {
		cfg.XMLLimit = def.XMLLimit
	}
	if cfg.MultipartLimit <= 0 {
		cfg.MultipartLimit = def.MultipartLimit
	}
	if cfg.Encoding == "" {
		cfg.Encoding = def.Encoding
	}
	if cfg.FormDepth < 0 {
		cfg.FormDepth = def.FormDepth
	}
	if cfg.FormArrayLimit < 0 {
		cfg.FormArrayLimit = def.FormArrayLimit
	}
	if cfg.FormParameterLimit <= 0 {
		cfg.FormParameterLimit = def.FormParameterLimit
	}
	if cfg.MultipartMaxMemory < 0 {
		cfg.MultipartMaxMemory = def.MultipartMaxMemory
	}
	if cfg.MultipartMaxFields <= 0 {
		cfg.MultipartMaxFields = def.MultipartMaxFields
	}
	if cfg.ExemptPaths == nil {
		cfg.ExemptPaths = def.ExemptPaths
	}
	return cfg
}

// Config returns the effective configuration.
func (p *Parser) Config() config.BodyParserConfig {
	return p.cfg
}

// Options returns the settings applied to kind.
func (p *Parser) Options(kind Kind) ParseOptions {
	return p.options[kind]
}

// Classify decides how the request body is interpreted.
func (p *Parser) Classify(r *http.Request) Decision {
	return p.classifier.Classify(r)
}

// Parse interprets the request body according to d. A none decision yields an
// empty map without reading the body.
func (p *Parser) Parse(ctx context.Context, r *http.Request, d Decision) (*Result, error) {
	if d.Kind == KindNone {
		p.metrics.observe(KindNone, outcomeIgnored, 0)
		return &Result{Kind: KindNone, Parsed: map[string]any{}}, nil
	}

	ctx, span := p.tracer.Start(ctx, "bodyparser.parse", trace.WithAttributes(
		attribute.String("bodyparser.kind", d.OptionsKind.String()),
		attribute.String("http.request.header.content_type", r.Header.Get("Content-Type")),
	))
	defer span.End()

	res, err := p.parse(ctx, r, d)
	if err != nil {
		perr := &ParseError{Kind: d.OptionsKind, Err: err}
		span.RecordError(perr)
		span.SetStatus(codes.Error, perr.Error())
		span.SetAttributes(attribute.Int("http.response.status_code", perr.StatusCode()))
		p.metrics.observe(d.OptionsKind, outcomeError, 0)
		return nil, perr
	}

	span.SetAttributes(attribute.Int("bodyparser.raw_bytes", len(res.Raw)))
	p.metrics.observe(d.OptionsKind, outcomeParsed, len(res.Raw))
	return res, nil
}

func (p *Parser) parse(ctx context.Context, r *http.Request, d Decision) (*Result, error) {
	opts := p.options[d.OptionsKind].streamOptions()
	src := stream.FromRequest(r)

	var (
		sr  *stream.Result
		err error
	)
	switch d.Kind {
	case KindJSON:
		sr, err = stream.JSON(src, opts)
	case KindForm:
		sr, err = stream.Form(src, opts)
	case KindText:
		sr, err = stream.Text(src, opts)
	case KindMultipart:
		return p.parseMultipart(ctx, r, src)
	default:
		return nil, fmt.Errorf("unexpected body kind %s", d.Kind)
	}
	if err != nil {
		return nil, err
	}

	return &Result{Kind: d.OptionsKind, Parsed: sr.Parsed, Raw: sr.Raw, HasRaw: true}, nil
}

func (p *Parser) parseMultipart(ctx context.Context, r *http.Request, src stream.Source) (*Result, error) {
	limit := p.options[KindMultipart].Limit
	if src.Length > limit {
		return nil, fmt.Errorf("%w: content length %d exceeds limit of %d bytes", ErrTooLarge, src.Length, limit)
	}

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || params["boundary"] == "" {
		return nil, multipart.ErrMissingBoundary
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fields, files, err := Aggregate(ctx, p.decoder.Decode(ctx, src.Body, params["boundary"]))
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindMultipart, Parsed: fields, Files: files}, nil
}

// Handle runs the body parser for one request. It returns the request, with the
// parsed body attached when parsing applied, or a *ParseError.
// ro carries the per-request options and is read once.
func (p *Parser) Handle(r *http.Request, ro RequestOptions) (*http.Request, error) {
	ctx := r.Context()

	if reason := p.skipReason(r, ro); reason != "" {
		p.logger.Debug("Skipping request body", log.F("reason", reason), log.F("path", r.URL.Path))
		return r, nil
	}

	if p.cfg.EnableRawChecking {
		if rr, ok := RawRequestFromContext(ctx); ok && rr.HasBody {
			p.metrics.observe(KindNone, outcomeAdopted, 0)
			return r.WithContext(WithBody(ctx, &Body{Kind: KindNone, Parsed: rr.Body})), nil
		}
	}

	d := p.Classify(r)
	res, err := p.Parse(ctx, r, d)
	if err != nil {
		p.logger.Warn("Failed to parse request body",
			log.E(err),
			log.F("kind", d.OptionsKind.String()),
			log.F("status", StatusCode(err)),
			log.F("path", r.URL.Path),
		)
		return r, err
	}

	if d.Kind != KindNone {
		p.logger.Debug("Parsed request body",
			log.F("kind", res.Kind.String()),
			log.F("bytes", len(res.Raw)),
			log.F("files", len(res.Files)),
		)
	}

	return r.WithContext(p.attach(ctx, res)), nil
}

func (p *Parser) skipReason(r *http.Request, ro RequestOptions) string {
	ctx := r.Context()

	if _, ok := p.methods[strings.ToUpper(r.Method)]; !ok {
		return "method"
	}
	if p.cfg.PatchRequest {
		if rr, ok := RawRequestFromContext(ctx); ok && rr.HasBody {
			return "raw request has body"
		}
	}
	if _, ok := FromContext(ctx); ok {
		return "already parsed"
	}
	if ro.Skip {
		return "disabled"
	}
	if slices.ContainsFunc(p.cfg.ExemptPaths, func(exempt string) bool {
		return pathMatches(r.URL.Path, exempt)
	}) {
		return "exempt path"
	}
	return ""
}

// attach stores the result on the context. A raw body that is already present is kept.
func (p *Parser) attach(ctx context.Context, res *Result) context.Context {
	b := &Body{
		Kind:   res.Kind,
		Parsed: res.Parsed,
		Raw:    res.Raw,
		HasRaw: res.HasRaw,
		Files:  res.Files,
	}

	if existing, ok := RawBodyFromContext(ctx); ok {
		b.Raw, b.HasRaw = existing, true
	} else if res.HasRaw {
		ctx = WithRawBody(ctx, res.Raw)
	}

	if p.cfg.PatchRequest {
		rr, ok := RawRequestFromContext(ctx)
		if !ok {
			rr = &RawRequest{}
			ctx = WithRawRequest(ctx, rr)
		}
		rr.SetBody(b.Parsed)
		if !rr.HasRawBody && res.HasRaw {
			rr.RawBody, rr.HasRawBody = res.Raw, true
		}
	}

	return WithBody(ctx, b)
}

// pathMatches checks if a request path matches an exempt path.
// Supports exact matches and prefix matches (paths ending with /).
func pathMatches(requestPath, exemptPath string) bool {
	if exemptPath == requestPath {
		return true
	}
	if strings.HasSuffix(exemptPath, "/") {
		return strings.HasPrefix(requestPath, exemptPath)
	}
	return false
}
