package config

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cast"
)

// ByteSize is a size limit in bytes. It can be parsed from numbers or
// human readable strings such as "1mb" or "56kb" (binary multiples).
type ByteSize int64

const (
	KB ByteSize = 1 << 10
	MB ByteSize = 1 << 20
)

// ParseByteSize converts a number or a size string into a ByteSize.
func ParseByteSize(v any) (ByteSize, error) {
	switch val := v.(type) {
	case ByteSize:
		return checkByteSize(int64(val), v)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, fmt.Errorf("%w: empty size", ErrInvalidValue)
		}
		n, err := units.RAMInBytes(s)
		if err != nil {
			return 0, fmt.Errorf("%w: size %q: %v", ErrInvalidValue, val, err)
		}
		return checkByteSize(n, v)
	default:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("%w: size %v: %v", ErrInvalidValue, v, err)
		}
		return checkByteSize(n, v)
	}
}

func checkByteSize(n int64, raw any) (ByteSize, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative size %v", ErrInvalidValue, raw)
	}
	return ByteSize(n), nil
}

// Int64 returns the size as a plain byte count.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// String returns a human readable representation, e.g. "1MiB".
func (b ByteSize) String() string {
	return units.BytesSize(float64(b))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}
