package body

import (
	"fmt"
	"sort"

	"dario.cat/mergo"
	"github.com/alexferl/bodyparser/config"
)

// MimeTypes maps each supported kind to the media types recognized for it.
type MimeTypes struct {
	types map[Kind][]string
}

// DefaultMimeTypes returns a fresh copy of the built-in media type table.
func DefaultMimeTypes() MimeTypes {
	return MimeTypes{types: map[Kind][]string{
		KindJSON: {
			"application/json",
			"application/json-patch+json",
			"application/vnd.api+json",
			"application/csp-report",
			"application/reports+json",
			"application/scim+json",
		},
		KindForm:      {"application/x-www-form-urlencoded"},
		KindText:      {"text/plain"},
		KindXML:       {"text/xml", "application/xml"},
		KindMultipart: {"multipart/form-data"},
	}}
}

// BuildMimeTypes returns the built-in table with extensions appended to each
// kind's list. Keys must name supported kinds and entries must be non-empty.
func BuildMimeTypes(extensions map[string][]string) (MimeTypes, error) {
	table := DefaultMimeTypes()

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)

	ext := make(map[Kind][]string, len(extensions))
	for _, name := range names {
		field := "extendTypes." + name

		kind, err := ParseKind(name)
		if err != nil {
			return MimeTypes{}, &config.Error{Field: "extendTypes", Value: name, Err: err}
		}
		for _, t := range extensions[name] {
			if t == "" {
				return MimeTypes{}, &config.Error{Field: field, Value: t, Err: fmt.Errorf("%w: empty media type", config.ErrInvalidValue)}
			}
		}
		ext[kind] = append(ext[kind], extensions[name]...)
	}

	if err := mergo.Merge(&table.types, ext, mergo.WithAppendSlice); err != nil {
		return MimeTypes{}, &config.Error{Field: "extendTypes", Value: extensions, Err: err}
	}
	return table, nil
}

// Types returns a copy of the media types for kind.
func (m MimeTypes) Types(kind Kind) []string {
	return append([]string(nil), m.types[kind]...)
}
