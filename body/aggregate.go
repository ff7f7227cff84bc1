package body

import (
	"context"

	"github.com/alexferl/bodyparser/multipart"
)

// Aggregate collects decoder events into a map keyed by field name. The first
// value for a name is stored as is; a repeated name turns into a slice holding
// every value in arrival order. Fields and files follow the same rule.
//
// On an error event or cancellation the partial result is discarded and every
// file received so far is removed.
func Aggregate(ctx context.Context, events <-chan multipart.Event) (map[string]any, []*multipart.File, error) {
	out := map[string]any{}
	var files []*multipart.File

	fail := func(err error) (map[string]any, []*multipart.File, error) {
		for _, f := range files {
			_ = f.Remove()
		}
		// buffered events may still hold files
		go func() {
			for ev := range events {
				if ev.File != nil {
					_ = ev.File.Remove()
				}
			}
		}()
		return nil, nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		case ev, ok := <-events:
			if !ok {
				return out, files, nil
			}
			switch ev.Kind {
			case multipart.EventField:
				addValue(out, ev.Name, ev.Value)
			case multipart.EventFile:
				files = append(files, ev.File)
				addValue(out, ev.Name, ev.File)
			case multipart.EventError:
				return fail(ev.Err)
			}
		}
	}
}

func addValue(m map[string]any, name string, v any) {
	existing, ok := m[name]
	if !ok {
		m[name] = v
		return
	}
	if list, isList := existing.([]any); isList {
		m[name] = append(list, v)
		return
	}
	m[name] = []any{existing, v}
}
