package dereport

import (
	"bufio"
	"bytes"
	"io"
)

var (
	backslashQuote = []byte(`\"`)
	doubledQuote   = []byte(`""`)
)

// quoteFixReader rewrites the \" escape, which R's write.table emits by
// default, into the "" escape that encoding/csv understands. It works a line
// at a time so that an escape is never split across reads.
type quoteFixReader struct {
	r       *bufio.Reader
	pending []byte
	err     error
}

// NewQuoteFixReader wraps r so that backslash-escaped quotes read as doubled
// quotes.
func NewQuoteFixReader(r io.Reader) io.Reader {
	return &quoteFixReader{r: bufio.NewReader(r)}
}

func (q *quoteFixReader) Read(p []byte) (int, error) {
	for len(q.pending) == 0 {
		if q.err != nil {
			return 0, q.err
		}

		line, err := q.r.ReadBytes('\n')
		q.pending = bytes.ReplaceAll(line, backslashQuote, doubledQuote)
		q.err = err
	}

	n := copy(p, q.pending)
	q.pending = q.pending[n:]

	return n, nil
}
