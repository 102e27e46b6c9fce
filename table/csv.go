package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/carbocation/dereport"
)

// Options control how a table is read.
type Options struct {
	// Comma is the field delimiter. Zero means guess it from the data.
	Comma rune

	// BHColumn names the adjusted significance column of an annotation table.
	// Defaults to "bh".
	BHColumn string

	// NameColumn names the column holding a human-readable feature name. If
	// empty, a column with a conventional name is used when present.
	NameColumn string
}

const DefaultBHColumn = "bh"

// ParseDelimiter reads a delimiter given as a single character or as the
// escape \t. The empty string means detect it.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if r := []rune(s); len(r) == 1 && r[0] != '"' && r[0] != '\n' && r[0] != '\r' {
		return r[0], nil
	}

	return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
}

// nameCandidates are tried, case-insensitively, when no name column is given.
var nameCandidates = []string{"gene", "symbol", "gene_symbol", "gene.symbol", "genesymbol", "name"}

func (o Options) bhColumn() string {
	if o.BHColumn == "" {
		return DefaultBHColumn
	}

	return o.BHColumn
}

// newReader returns a csv.Reader over r, guessing the delimiter if needed.
// Backslash-escaped quotes are accepted.
func newReader(r io.Reader, comma rune) *csv.Reader {
	br := bufio.NewReader(dereport.NewQuoteFixReader(r))
	if comma == 0 {
		comma = dereport.PeekDelimiter(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = trimLeadingSpace(comma)

	return cr
}

// trimLeadingSpace is false for whitespace delimiters, where trimming would
// swallow empty fields.
func trimLeadingSpace(comma rune) bool {
	return !unicode.IsSpace(comma)
}

// normalizeHeader pads a header that is one field shorter than the data rows,
// as R writes when the row names have no column name.
func normalizeHeader(header []string, width int) []string {
	if len(header) == width-1 {
		return append([]string{""}, header...)
	}

	return header
}

// isMissing reports whether a cell encodes a missing value.
func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "nan", "N/A", "null":
		return true
	}

	return false
}

// ErrNotFinite is wrapped by a ParseError when a numeric cell is infinite.
var ErrNotFinite = errors.New("value is not finite")

// parseFloat parses a numeric cell; missing values become NaN. Infinities are
// rejected.
func parseFloat(s string) (float64, error) {
	if isMissing(s) {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}

	return v, nil
}

// formatFloat is the inverse of parseFloat.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newWriter(w io.Writer, comma rune) *csv.Writer {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}

	return cw
}
