package bodyparser

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/alexferl/bodyparser/body"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"
)

// ErrNoBody is returned by Binder.Body when no parsed body is attached to the request.
var ErrNoBody = errors.New("bodyparser: no parsed body on request")

// Bind is the default binder instance used by the package
var Bind Binder = &defaultBinder{validate: validator.New(validator.WithRequiredStructEnabled())}

// B is a short alias for Bind for convenience
var B = Bind

// Binder decodes request data into Go values.
type Binder interface {
	// JSON decodes a JSON document into dst.
	// Unknown fields are rejected.
	JSON(r io.Reader, dst any) error

	// Body decodes the body attached by the body parser into dst and validates
	// the result using `validate` struct tags. Fields are matched by their `json` tag.
	// Form and multipart values are converted from strings where needed;
	// uploaded files bind to *multipart.File fields.
	Body(r *http.Request, dst any) error
}

type defaultBinder struct {
	validate *validator.Validate
}

func (b *defaultBinder) JSON(r io.Reader, dst any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func (b *defaultBinder) Body(r *http.Request, dst any) error {
	parsed, ok := body.FromContext(r.Context())
	if !ok {
		return ErrNoBody
	}

	if s, isString := parsed.Parsed.(string); isString {
		if p, ok := dst.(*string); ok {
			*p = s
			return nil
		}
		return fmt.Errorf("bodyparser: cannot bind %s body to %T", parsed.Kind, dst)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       singleValueHook,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(parsed.Parsed); err != nil {
		return err
	}

	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return nil
	}
	return b.validate.Struct(dst)
}

// singleValueHook unwraps repeated form values bound to a scalar field, keeping the last one.
func singleValueHook(from, to reflect.Type, data any) (any, error) {
	values, ok := data.([]any)
	if !ok || len(values) == 0 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Array, reflect.Interface:
		return data, nil
	}
	return values[len(values)-1], nil
}
