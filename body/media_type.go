package body

import (
	"errors"
	"mime"
	"strings"
)

// shorthands resolves the short type names accepted in media type lists.
var shorthands = map[string]string{
	"json":       "application/json",
	"urlencoded": "application/x-www-form-urlencoded",
	"multipart":  "multipart/*",
	"text":       "text/plain",
	"txt":        "text/plain",
	"xml":        "application/xml",
	"html":       "text/html",
}

// MatchMediaType reports whether the Content-Type header value matches any of
// types, returning the first matching entry. Parameters are ignored, and a
// trailing ";" is tolerated. Entries may be full types ("application/json"),
// wildcards ("text/*", "*/*"), suffixes ("+json") or short names ("json", "urlencoded").
func MatchMediaType(header string, types []string) (string, bool) {
	actual, ok := parseContentType(header)
	if !ok {
		return "", false
	}

	for _, t := range types {
		expected := normalizeMediaType(t)
		if expected == "" {
			continue
		}
		if mediaTypeMatches(expected, actual) {
			return t, true
		}
	}
	return "", false
}

func parseContentType(header string) (string, bool) {
	value := strings.TrimSuffix(strings.TrimSpace(header), ";")
	if value == "" {
		return "", false
	}

	mt, _, err := mime.ParseMediaType(value)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", false
	}

	typ, sub, found := strings.Cut(mt, "/")
	if !found || typ == "" || sub == "" || strings.Contains(sub, "/") {
		return "", false
	}
	return mt, true
}

func normalizeMediaType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch {
	case t == "":
		return ""
	case t[0] == '+':
		return "*/*" + t
	case strings.Contains(t, "/"):
		return t
	}

	if full, ok := shorthands[t]; ok {
		return full
	}
	if byExt := mime.TypeByExtension("." + t); byExt != "" {
		mt, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mt
		}
	}
	return ""
}

func mediaTypeMatches(expected, actual string) bool {
	eType, eSub, _ := strings.Cut(expected, "/")
	aType, aSub, _ := strings.Cut(actual, "/")

	if eType != "*" && eType != aType {
		return false
	}

	if strings.HasPrefix(eSub, "*+") {
		suffix := eSub[1:]
		return len(aSub) > len(suffix) && strings.HasSuffix(aSub, suffix)
	}

	return eSub == "*" || eSub == aSub
}
