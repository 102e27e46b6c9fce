// Package ramcsv indexes a delimited file by line so that individual rows can
// be fetched by their first-column key without parsing the rest of the file.
// Records may not span lines: a quoted field holding a newline fails with
// csv.ErrQuote or csv.ErrBareQuote.
package ramcsv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

type locator struct {
	Offset int64
	Length int
}

type RAMCSV struct {
	m    []locator      // maps line numbers (index) to Offset and Length (value)
	keys map[string]int // maps first-field keys to line numbers
	rdr  *csv.Reader    // to store settings
	src  io.ReaderAt
}

// New scans src once, recording the offset of every non-blank line and the
// key found in its first field. Line 0 is the header and is not keyed. The
// template reader only contributes its settings.
func New(src io.ReaderAt, size int64, rdr *csv.Reader) (*RAMCSV, error) {
	if rdr == nil {
		rdr = csv.NewReader(nil)
	}

	ram := RAMCSV{
		m:    make([]locator, 0),
		keys: make(map[string]int),
		rdr:  rdr,
		src:  src,
	}

	// To initialize, scan through the entire file once to identify the offsets
	// at each line.
	scanner := bufio.NewScanner(io.NewSectionReader(src, 0, size))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(scanLinesNondestructive)

	var offset int64
	var b []byte
	for scanner.Scan() {
		b = scanner.Bytes()
		loc := locator{Offset: offset, Length: len(b)}
		offset += int64(len(b))

		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}

		line := len(ram.m)
		ram.m = append(ram.m, loc)
		if line == 0 {
			continue
		}

		rec, err := ram.parse(b)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prior, exists := ram.keys[rec[0]]; exists {
			return nil, fmt.Errorf("key %q appears on both line %d and line %d", rec[0], prior, line)
		}
		ram.keys[rec[0]] = line
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &ram, nil
}

// Len is the number of indexed lines, including the header.
func (ram *RAMCSV) Len() int {
	return len(ram.m)
}

// Rows is the number of keyed (non-header) lines.
func (ram *RAMCSV) Rows() int {
	return len(ram.keys)
}

// Lookup returns the line holding key.
func (ram *RAMCSV) Lookup(key string) (int, bool) {
	line, ok := ram.keys[key]
	return line, ok
}

// Keys returns the keys in file order.
func (ram *RAMCSV) Keys() []string {
	out := make([]string, len(ram.keys))
	for k, line := range ram.keys {
		out[line-1] = k
	}

	return out
}

// Header returns the first line.
func (ram *RAMCSV) Header() ([]string, error) {
	if len(ram.m) == 0 {
		return nil, io.EOF
	}

	return ram.Read(0)
}

func (ram *RAMCSV) Read(line int) ([]string, error) {
	if line < 0 || len(ram.m)-1 < line {
		return nil, fmt.Errorf("Line %d is greater than the length of the file (%d)", line, len(ram.m))
	}

	val := make([]byte, ram.m[line].Length)
	if _, err := ram.src.ReadAt(val, ram.m[line].Offset); err != nil && err != io.EOF {
		return nil, err
	}

	return ram.parse(val)
}

// ReadKey returns the row whose first field is key.
func (ram *RAMCSV) ReadKey(key string) ([]string, error) {
	line, ok := ram.keys[key]
	if !ok {
		return nil, fmt.Errorf("key %q is not present", key)
	}

	return ram.Read(line)
}

func (ram *RAMCSV) parse(val []byte) ([]string, error) {
	csvr := csv.NewReader(bytes.NewBuffer(val))
	csvr.Comma = ram.rdr.Comma
	csvr.Comment = ram.rdr.Comment
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = ram.rdr.LazyQuotes
	csvr.TrimLeadingSpace = ram.rdr.TrimLeadingSpace

	rec, err := csvr.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("empty record")
	}

	return rec, nil
}

// scanLinesNondestructive does not destroy the \n or the possible \r\n from a
// line. Otherwise it is like
// https://golang.org/src/bufio/scan.go?s=11522:11600#L330
func scanLinesNondestructive(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		// We have a full newline-terminated line.
		return i + 1, data[0 : i+1], nil
	}
	// If we're at EOF, we have a final, non-terminated line. Return it.
	if atEOF {
		return len(data), data, nil
	}
	// Request more data.
	return 0, nil, nil
}
