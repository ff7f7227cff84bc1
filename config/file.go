package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// bodyParserFile is the on-disk shape of a body parser configuration.
// Pointer fields distinguish "absent" from zero values.
type bodyParserFile struct {
	ParsedMethods     []string       `mapstructure:"parsedMethods" validate:"omitempty,dive,required,uppercase"`
	EnableTypes       []string       `mapstructure:"enableTypes" validate:"omitempty,dive,oneof=json form text xml multipart"`
	ExtendTypes       map[string]any `mapstructure:"extendTypes"`
	JSONLimit         *ByteSize      `mapstructure:"jsonLimit" validate:"omitempty,gt=0"`
	FormLimit         *ByteSize      `mapstructure:"formLimit" validate:"omitempty,gt=0"`
	TextLimit         *ByteSize      `mapstructure:"textLimit" validate:"omitempty,gt=0"`
	XMLLimit          *ByteSize      `mapstructure:"xmlLimit" validate:"omitempty,gt=0"`
	Encoding          *string        `mapstructure:"encoding" validate:"omitempty,min=1"`
	JSONStrict        *bool          `mapstructure:"jsonStrict"`
	PatchRequest      *bool          `mapstructure:"patchRequest"`
	EnableRawChecking *bool          `mapstructure:"enableRawChecking"`
	ExemptPaths       []string       `mapstructure:"exemptPaths" validate:"omitempty,dive,startswith=/"`
	Form              struct {
		Depth          *int `mapstructure:"depth" validate:"omitempty,gte=0"`
		ArrayLimit     *int `mapstructure:"arrayLimit" validate:"omitempty,gte=0"`
		ParameterLimit *int `mapstructure:"parameterLimit" validate:"omitempty,gt=0"`
	} `mapstructure:"form"`
	Multipart struct {
		Limit       *ByteSize `mapstructure:"limit" validate:"omitempty,gt=0"`
		MaxFileSize *ByteSize `mapstructure:"maxFileSize" validate:"omitempty,gt=0"`
		MaxMemory   *ByteSize `mapstructure:"maxMemory" validate:"omitempty,gte=0"`
		MaxFields   *int      `mapstructure:"maxFields" validate:"omitempty,gt=0"`
		UploadDir   *string   `mapstructure:"uploadDir"`
		KeepFiles   *bool     `mapstructure:"keepFiles"`
	} `mapstructure:"multipart"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadBodyParserFile reads a YAML, TOML or JSON file and returns the options it describes.
// The format is chosen from the file extension.
func LoadBodyParserFile(path string) ([]BodyParserOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read body parser config: %w", err)
	}
	return ParseBodyParserConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseBodyParserConfig decodes a configuration document in the given format
// ("yaml", "yml", "toml" or "json") into body parser options.
func ParseBodyParserConfig(data []byte, format string) ([]BodyParserOption, error) {
	raw := map[string]any{}

	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &raw)
	case "toml":
		err = toml.Unmarshal(data, &raw)
	case "json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, &Error{Field: "format", Value: format, Err: fmt.Errorf("%w: expected yaml, toml or json", ErrInvalidValue)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode body parser config: %w", err)
	}

	var f bodyParserFile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(byteSizeHookFunc(), mapstructure.StringToSliceHookFunc(",")),
		ErrorUnused: true,
		Result:      &f,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &Error{Field: "file", Value: format, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
	}

	if err := validate.Struct(f); err != nil {
		return nil, &Error{Field: "file", Value: format, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
	}

	return f.options()
}

func (f *bodyParserFile) options() ([]BodyParserOption, error) {
	var opts []BodyParserOption

	if f.ParsedMethods != nil {
		opts = append(opts, WithBodyParserParsedMethods(f.ParsedMethods))
	}
	if f.EnableTypes != nil {
		opts = append(opts, WithBodyParserEnableTypes(f.EnableTypes))
	}
	if f.ExtendTypes != nil {
		ext, err := NormalizeExtendTypes(f.ExtendTypes)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithBodyParserExtendTypes(ext))
	}
	if f.JSONLimit != nil {
		opts = append(opts, WithBodyParserJSONLimit(*f.JSONLimit))
	}
	if f.FormLimit != nil {
		opts = append(opts, WithBodyParserFormLimit(*f.FormLimit))
	}
	if f.TextLimit != nil {
		opts = append(opts, WithBodyParserTextLimit(*f.TextLimit))
	}
	if f.XMLLimit != nil {
		opts = append(opts, WithBodyParserXMLLimit(*f.XMLLimit))
	}
	if f.Encoding != nil {
		opts = append(opts, WithBodyParserEncoding(*f.Encoding))
	}
	if f.JSONStrict != nil {
		opts = append(opts, WithBodyParserJSONStrict(*f.JSONStrict))
	}
	if f.PatchRequest != nil {
		opts = append(opts, WithBodyParserPatchRequest(*f.PatchRequest))
	}
	if f.EnableRawChecking != nil {
		opts = append(opts, WithBodyParserEnableRawChecking(*f.EnableRawChecking))
	}
	if f.ExemptPaths != nil {
		opts = append(opts, WithBodyParserExemptPaths(f.ExemptPaths))
	}
	if f.Form.Depth != nil {
		opts = append(opts, WithBodyParserFormDepth(*f.Form.Depth))
	}
	if f.Form.ArrayLimit != nil {
		opts = append(opts, WithBodyParserFormArrayLimit(*f.Form.ArrayLimit))
	}
	if f.Form.ParameterLimit != nil {
		opts = append(opts, WithBodyParserFormParameterLimit(*f.Form.ParameterLimit))
	}
	if f.Multipart.Limit != nil {
		opts = append(opts, WithBodyParserMultipartLimit(*f.Multipart.Limit))
	}
	if f.Multipart.MaxFileSize != nil {
		opts = append(opts, WithBodyParserMultipartMaxFileSize(*f.Multipart.MaxFileSize))
	}
	if f.Multipart.MaxMemory != nil {
		opts = append(opts, WithBodyParserMultipartMaxMemory(*f.Multipart.MaxMemory))
	}
	if f.Multipart.MaxFields != nil {
		opts = append(opts, WithBodyParserMultipartMaxFields(*f.Multipart.MaxFields))
	}
	if f.Multipart.UploadDir != nil {
		opts = append(opts, WithBodyParserMultipartUploadDir(*f.Multipart.UploadDir))
	}
	if f.Multipart.KeepFiles != nil {
		opts = append(opts, WithBodyParserMultipartKeepFiles(*f.Multipart.KeepFiles))
	}

	return opts, nil
}

// NormalizeExtendTypes converts loosely typed extendTypes values (a single string
// or a list of strings per kind) into string lists. Any other member type is rejected.
func NormalizeExtendTypes(in map[string]any) (map[string][]string, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string][]string, len(in))
	for _, key := range keys {
		field := "extendTypes." + key
		switch v := in[key].(type) {
		case nil:
			continue
		case string:
			out[key] = []string{v}
		case []string:
			out[key] = append([]string{}, v...)
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, &Error{Field: field, Value: item, Err: fmt.Errorf("%w: expected a string media type", ErrInvalidValue)}
				}
				list = append(list, s)
			}
			out[key] = list
		default:
			return nil, &Error{Field: field, Value: v, Err: fmt.Errorf("%w: expected a string or a list of strings", ErrInvalidValue)}
		}
	}
	return out, nil
}

func byteSizeHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(ByteSize(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != target {
			return data, nil
		}
		return ParseByteSize(data)
	}
}
