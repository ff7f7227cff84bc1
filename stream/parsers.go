package stream

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Text reads the body as a string.
func Text(src Source, opts Options) (*Result, error) {
	raw, err := read(src, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Raw: raw, Parsed: raw}, nil
}

// JSON reads the body and decodes it as JSON.
// In strict mode only objects and arrays are accepted and an empty body yields
// an empty object; otherwise an empty body yields an empty string.
func JSON(src Source, opts Options) (*Result, error) {
	raw, err := read(src, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Raw: raw}
	if isBlank(raw) {
		if opts.Strict {
			res.Parsed = map[string]any{}
		} else {
			res.Parsed = ""
		}
		return res, nil
	}

	if opts.Strict {
		first := strings.TrimLeft(raw, " \t\r\n")[0]
		if first != '{' && first != '[' {
			return nil, fmt.Errorf("%w: invalid JSON, only supports object and array", ErrMalformed)
		}
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	res.Parsed = v
	return res, nil
}

// Form reads a urlencoded body and decodes it with bracket nesting, e.g.
// "user[name]=a&tags[]=x&tags[]=y" becomes {"user": {"name": "a"}, "tags": ["x", "y"]}.
func Form(src Source, opts Options) (*Result, error) {
	raw, err := read(src, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Raw: raw}
	if isBlank(raw) {
		res.Parsed = map[string]any{}
		return res, nil
	}

	res.Parsed = ParseQuery(raw, QueryOptions{
		Depth:          opts.Depth,
		ArrayLimit:     opts.ArrayLimit,
		ParameterLimit: opts.ParameterLimit,
	})
	return res, nil
}
