package body

import (
	"context"

	"github.com/alexferl/bodyparser/multipart"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	bodyContextKey           ContextKey = "bodyparser.body"
	rawBodyContextKey        ContextKey = "bodyparser.raw_body"
	rawRequestContextKey     ContextKey = "bodyparser.raw_request"
	// RequestOptionsContextKey holds the RequestOptions of a request
	RequestOptionsContextKey ContextKey = "bodyparser.request_options"
)

// Body is the parsed representation attached to a request.
type Body struct {
	// Kind is the kind the body was interpreted as (xml for XML bodies, none when no parser applied)
	Kind Kind
	// Parsed is map[string]any for json objects, form and multipart bodies, []any for json
	// arrays, string for text and xml bodies, and an empty map when no parser applied
	Parsed any
	// Raw is the raw body text; it is empty for multipart and unparsed bodies
	Raw string
	// HasRaw reports whether Raw is set
	HasRaw bool
	// Files lists the uploaded files of a multipart body
	Files []*multipart.File
}

// Map returns the parsed body as a map, or nil if it is not one.
func (b *Body) Map() map[string]any {
	m, _ := b.Parsed.(map[string]any)
	return m
}

// WithBody attaches a parsed body to ctx.
func WithBody(ctx context.Context, b *Body) context.Context {
	return context.WithValue(ctx, bodyContextKey, b)
}

// FromContext returns the parsed body attached to ctx.
func FromContext(ctx context.Context) (*Body, bool) {
	b, ok := ctx.Value(bodyContextKey).(*Body)
	return b, ok && b != nil
}

// WithRawBody attaches raw body text to ctx. The body parser never replaces it.
func WithRawBody(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, rawBodyContextKey, raw)
}

// RawBodyFromContext returns the raw body text attached to ctx.
func RawBodyFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(rawBodyContextKey).(string)
	return raw, ok
}

// RawRequest carries a body that was decoded before the body parser ran, for
// example by a proxy layer. With patching enabled the body parser also writes
// its result back into it.
type RawRequest struct {
	Body       any
	HasBody    bool
	RawBody    string
	HasRawBody bool
}

// SetBody records a body on the raw request.
func (rr *RawRequest) SetBody(v any) {
	rr.Body = v
	rr.HasBody = true
}

// WithRawRequest attaches a raw request holder to ctx.
func WithRawRequest(ctx context.Context, rr *RawRequest) context.Context {
	return context.WithValue(ctx, rawRequestContextKey, rr)
}

// RawRequestFromContext returns the raw request holder attached to ctx.
func RawRequestFromContext(ctx context.Context) (*RawRequest, bool) {
	rr, ok := ctx.Value(rawRequestContextKey).(*RawRequest)
	return rr, ok && rr != nil
}

// RequestOptions are per-request settings read once when the body parser runs.
type RequestOptions struct {
	// Skip disables body parsing for the request
	Skip bool
}

// WithRequestOptions attaches per-request options to ctx.
func WithRequestOptions(ctx context.Context, ro RequestOptions) context.Context {
	return context.WithValue(ctx, RequestOptionsContextKey, ro)
}

// RequestOptionsFromContext returns the per-request options attached to ctx, or the zero value.
func RequestOptionsFromContext(ctx context.Context) RequestOptions {
	ro, _ := ctx.Value(RequestOptionsContextKey).(RequestOptions)
	return ro
}
