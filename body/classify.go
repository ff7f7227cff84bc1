package body

import "net/http"

// Decision is the outcome of classifying a request.
type Decision struct {
	// Kind selects the parser: json, form, text, multipart or none.
	// XML bodies are parsed as text.
	Kind Kind
	// OptionsKind selects the limits and settings applied to the parser.
	// It is xml for XML bodies and equal to Kind otherwise.
	OptionsKind Kind
}

// Classifier decides how a request body is interpreted.
type Classifier struct {
	types      MimeTypes
	enabled    EnabledKinds
	detectJSON func(r *http.Request) bool
}

// NewClassifier creates a Classifier. detectJSON may be nil.
func NewClassifier(types MimeTypes, enabled EnabledKinds, detectJSON func(r *http.Request) bool) *Classifier {
	return &Classifier{types: types, enabled: enabled, detectJSON: detectJSON}
}

// Classify picks the first applicable kind in the order json, form, text/xml, multipart.
// A custom JSON detector wins over the Content-Type whenever json is enabled.
func (c *Classifier) Classify(r *http.Request) Decision {
	contentType := r.Header.Get("Content-Type")

	if c.enabled[KindJSON] && ((c.detectJSON != nil && c.detectJSON(r)) || c.matches(contentType, KindJSON)) {
		return Decision{Kind: KindJSON, OptionsKind: KindJSON}
	}

	if c.shouldParse(contentType, KindForm) {
		return Decision{Kind: KindForm, OptionsKind: KindForm}
	}

	// xml wins the options lookup when both lists match
	if c.shouldParse(contentType, KindXML) {
		return Decision{Kind: KindText, OptionsKind: KindXML}
	}
	if c.shouldParse(contentType, KindText) {
		return Decision{Kind: KindText, OptionsKind: KindText}
	}

	if c.shouldParse(contentType, KindMultipart) {
		return Decision{Kind: KindMultipart, OptionsKind: KindMultipart}
	}

	return Decision{Kind: KindNone, OptionsKind: KindNone}
}

func (c *Classifier) shouldParse(contentType string, kind Kind) bool {
	return c.enabled[kind] && c.matches(contentType, kind)
}

func (c *Classifier) matches(contentType string, kind Kind) bool {
	_, ok := MatchMediaType(contentType, c.types.types[kind])
	return ok
}
