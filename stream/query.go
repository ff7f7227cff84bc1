package stream

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// QueryOptions bounds the decoding of urlencoded bodies.
type QueryOptions struct {
	// Depth is the maximum number of bracket segments expanded per key; the rest is kept verbatim
	Depth int
	// ArrayLimit is the largest index that creates an array, larger indices become object keys
	ArrayLimit int
	// ParameterLimit is the maximum number of parameters decoded, extra parameters are dropped
	ParameterLimit int
}

// DefaultQueryOptions are the limits used when none are configured.
var DefaultQueryOptions = QueryOptions{
	Depth:          5,
	ArrayLimit:     20,
	ParameterLimit: 1000,
}

// hole marks an unset slot in a sparse array; holes are removed before returning.
type hole struct{}

func isHole(v any) bool {
	_, ok := v.(hole)
	return ok
}

var bracketSegment = regexp.MustCompile(`\[[^\[\]]*\]`)

// ParseQuery decodes a urlencoded string into nested maps and slices.
//
//	a=1&a=2          -> {"a": ["1", "2"]}
//	a[b][c]=d        -> {"a": {"b": {"c": "d"}}}
//	a[]=x&a[]=y      -> {"a": ["x", "y"]}
//	a[1]=y&a[0]=x    -> {"a": ["x", "y"]}
//	a[100]=x         -> {"a": {"100": "x"}}
func ParseQuery(s string, opts QueryOptions) map[string]any {
	if opts.ParameterLimit <= 0 {
		opts.ParameterLimit = DefaultQueryOptions.ParameterLimit
	}

	parts := strings.SplitN(s, "&", opts.ParameterLimit+1)
	if len(parts) > opts.ParameterLimit {
		parts = parts[:opts.ParameterLimit]
	}

	var keys []string
	flat := make(map[string]any, len(parts))
	for _, part := range parts {
		pos := strings.Index(part, "]=")
		if pos == -1 {
			pos = strings.Index(part, "=")
		} else {
			pos++
		}

		var key, val string
		if pos == -1 {
			key = decodeComponent(part)
		} else {
			key = decodeComponent(part[:pos])
			val = decodeComponent(part[pos+1:])
		}
		if key == "" {
			continue
		}

		if existing, ok := flat[key]; ok {
			flat[key] = concat(existing, val)
		} else {
			keys = append(keys, key)
			flat[key] = val
		}
	}

	var out any = map[string]any{}
	for _, key := range keys {
		out = merge(out, parseKey(key, flat[key], opts))
	}

	if m, ok := compact(out).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func decodeComponent(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return strings.ReplaceAll(s, "+", " ")
}

// parseKey splits a key into its bracket chain and builds the nested value for it.
func parseKey(key string, val any, opts QueryOptions) any {
	var chain []string

	locs := bracketSegment.FindAllStringIndex(key, -1)
	if opts.Depth <= 0 || len(locs) == 0 {
		chain = []string{key}
	} else {
		if parent := key[:locs[0][0]]; parent != "" {
			chain = append(chain, parent)
		}
		n := min(len(locs), opts.Depth)
		for _, loc := range locs[:n] {
			chain = append(chain, key[loc[0]:loc[1]])
		}
		if len(locs) > opts.Depth {
			chain = append(chain, "["+key[locs[opts.Depth][0]:]+"]")
		}
	}

	leaf := val
	for i := len(chain) - 1; i >= 0; i-- {
		root := chain[i]
		if root == "[]" {
			leaf = concat(leaf)
			continue
		}

		clean := root
		if len(root) >= 2 && root[0] == '[' && root[len(root)-1] == ']' {
			clean = root[1 : len(root)-1]
		}

		idx, err := strconv.Atoi(clean)
		if err == nil && root != clean && strconv.Itoa(idx) == clean && idx >= 0 && idx <= opts.ArrayLimit {
			arr := make([]any, idx+1)
			for j := 0; j < idx; j++ {
				arr[j] = hole{}
			}
			arr[idx] = leaf
			leaf = arr
			continue
		}

		leaf = map[string]any{clean: leaf}
	}
	return leaf
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// concat flattens slices one level and appends scalars.
func concat(items ...any) []any {
	out := []any{}
	for _, item := range items {
		if arr, ok := item.([]any); ok {
			out = append(out, arr...)
		} else {
			out = append(out, item)
		}
	}
	return out
}

// merge folds source into target. Repeated scalars collect into arrays, maps merge key by key,
// and an array merged with a map is turned into a map keyed by index.
func merge(target, source any) any {
	if source == nil || source == "" {
		return target
	}

	if !isContainer(source) {
		switch t := target.(type) {
		case []any:
			return append(t, source)
		case map[string]any:
			if s, ok := source.(string); ok {
				t[s] = true
			}
			return t
		default:
			return []any{target, source}
		}
	}

	if !isContainer(target) {
		return append([]any{target}, concat(source)...)
	}

	if tArr, ok := target.([]any); ok {
		sArr, ok := source.([]any)
		if !ok {
			target = arrayToObject(tArr)
		} else {
			for i, item := range sArr {
				if isHole(item) {
					continue
				}
				if i < len(tArr) && !isHole(tArr[i]) {
					if isContainer(tArr[i]) && isContainer(item) {
						tArr[i] = merge(tArr[i], item)
					} else {
						tArr = append(tArr, item)
					}
					continue
				}
				for len(tArr) <= i {
					tArr = append(tArr, hole{})
				}
				tArr[i] = item
			}
			return tArr
		}
	}

	t := target.(map[string]any)
	switch s := source.(type) {
	case map[string]any:
		for k, v := range s {
			if existing, ok := t[k]; ok {
				t[k] = merge(existing, v)
			} else {
				t[k] = v
			}
		}
	case []any:
		for i, v := range s {
			if isHole(v) {
				continue
			}
			k := strconv.Itoa(i)
			if existing, ok := t[k]; ok {
				t[k] = merge(existing, v)
			} else {
				t[k] = v
			}
		}
	}
	return t
}

func arrayToObject(arr []any) map[string]any {
	out := make(map[string]any, len(arr))
	for i, v := range arr {
		if !isHole(v) {
			out[strconv.Itoa(i)] = v
		}
	}
	return out
}

// compact removes holes from every array in v.
func compact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = compact(child)
		}
		return t
	case []any:
		out := make([]any, 0, len(t))
		for _, child := range t {
			if !isHole(child) {
				out = append(out, compact(child))
			}
		}
		return out
	default:
		return v
	}
}
