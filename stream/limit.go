package stream

import (
	"fmt"
	"io"
)

type limitedReader struct {
	r         io.Reader
	limit     int64
	remaining int64
	exceeded  bool
}

// LimitReader returns a reader that fails with ErrTooLarge as soon as more than
// limit bytes are read from r. A limit <= 0 disables the check.
func LimitReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	return &limitedReader{r: r, limit: limit, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, l.err()
	}

	// read one byte past the limit so an exactly-sized body still reaches EOF cleanly
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}

	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		n = int(l.remaining)
		l.remaining = 0
		l.exceeded = true
		return n, l.err()
	}
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedReader) err() error {
	return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, l.limit)
}
