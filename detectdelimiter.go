package dereport

import (
	"bufio"
	"bytes"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// sniffBytes is how much of a stream is inspected when guessing the delimiter.
const sniffBytes = 64 * 1024

// Only these are ever reported; anything else the detector proposes (a decimal
// point that happens to appear once per line, say) is ignored.
var knownDelimiters = map[rune]struct{}{
	',':  {},
	'\t': {},
	';':  {},
	'|':  {},
}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	for _, v := range delimiters {
		if len(v) == 0 {
			continue
		}
		if _, ok := knownDelimiters[rune(v[0])]; ok {
			return rune(v[0])
		}
	}

	return ','
}

// PeekDelimiter guesses the delimiter from the head of br without consuming
// anything from it.
func PeekDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(sniffBytes)
	if len(head) == 0 {
		return ','
	}

	// The detector samples whole lines, so hand it complete ones only.
	if i := bytes.LastIndexByte(head, '\n'); i > 0 {
		head = head[:i+1]
	}

	return DetermineDelimiter(bytes.NewReader(head))
}
