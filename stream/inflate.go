package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// SupportedContentEncodings lists the Content-Encoding values that are inflated transparently.
var SupportedContentEncodings = []string{"identity", "gzip", "x-gzip", "deflate", "br", "zstd"}

func normalizeContentEncoding(ce string) string {
	ce = strings.ToLower(strings.TrimSpace(ce))
	if ce == "" {
		return "identity"
	}
	return ce
}

// inflate wraps r with a decompressor for the given Content-Encoding.
// The returned close function releases decoder resources.
func inflate(r io.Reader, contentEncoding string) (io.Reader, func(), error) {
	nop := func() {}

	switch ce := normalizeContentEncoding(contentEncoding); ce {
	case "identity":
		return r, nop, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nop, classifyReadError(err, fmt.Errorf("%w: invalid gzip stream: %v", ErrMalformed, err))
		}
		return zr, func() { _ = zr.Close() }, nil
	case "deflate":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, nop, classifyReadError(err, fmt.Errorf("%w: invalid deflate stream: %v", ErrMalformed, err))
		}
		return zr, func() { _ = zr.Close() }, nil
	case "br":
		return brotli.NewReader(r), nop, nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nop, fmt.Errorf("%w: invalid zstd stream: %v", ErrMalformed, err)
		}
		return zr, zr.Close, nil
	default:
		return nil, nop, fmt.Errorf("%w: %q", ErrUnsupportedContentEncoding, ce)
	}
}
