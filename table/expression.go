package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/carbocation/dereport"
	"github.com/carbocation/dereport/ramcsv"
	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
)

// ExpressionMatrix holds intensities with one row per feature and one column
// per sample. Values is nil when the matrix has no rows or no columns.
type ExpressionMatrix struct {
	KeyHeader string
	Keys      []string
	Samples   []string
	Values    *mat.Dense
}

// NewExpressionMatrix builds a matrix from row-major data.
func NewExpressionMatrix(keyHeader string, keys, samples []string, data []float64) (*ExpressionMatrix, error) {
	if len(data) != len(keys)*len(samples) {
		return nil, fmt.Errorf("%d keys and %d samples need %d values, got %d", len(keys), len(samples), len(keys)*len(samples), len(data))
	}

	out := &ExpressionMatrix{
		KeyHeader: keyHeader,
		Keys:      keys,
		Samples:   samples,
	}
	if len(keys) > 0 && len(samples) > 0 {
		out.Values = mat.NewDense(len(keys), len(samples), data)
	}

	return out, nil
}

func (m *ExpressionMatrix) Rows() int { return len(m.Keys) }

func (m *ExpressionMatrix) Cols() int { return len(m.Samples) }

// Row returns a copy of row i.
func (m *ExpressionMatrix) Row(i int) []float64 {
	if m.Values == nil {
		return nil
	}

	return mat.Row(nil, i, m.Values)
}

// RowOf returns the position of key.
func (m *ExpressionMatrix) RowOf(key string) (int, bool) {
	for i, k := range m.Keys {
		if k == key {
			return i, true
		}
	}

	return -1, false
}

// ReadExpression parses a complete expression matrix.
func ReadExpression(r io.Reader, opts Options) (*ExpressionMatrix, error) {
	cr := newReader(r, opts.Comma)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("no header row")}
	}

	width := len(records[0])
	if len(records) > 1 {
		width = len(records[1])
	}
	header := normalizeHeader(records[0], width)

	keys := make([]string, 0, len(records)-1)
	data := make([]float64, 0, (len(records)-1)*(len(header)-1))
	seen := make(map[string]int, len(records))
	for i, rec := range records[1:] {
		key, vals, err := parseExpressionRow(rec, header, i+2)
		if err != nil {
			return nil, err
		}
		if prior, exists := seen[key]; exists {
			return nil, &ParseError{Line: i + 2, Column: header[0], Value: key, Err: fmt.Errorf("duplicate key, first seen on line %d", prior)}
		}
		seen[key] = i + 2
		keys = append(keys, key)
		data = append(data, vals...)
	}

	return NewExpressionMatrix(header[0], keys, append([]string(nil), header[1:]...), data)
}

func parseExpressionRow(rec, header []string, line int) (string, []float64, error) {
	if len(rec) != len(header) {
		return "", nil, &ParseError{Line: line, Err: fmt.Errorf("expected %d fields, found %d", len(header), len(rec))}
	}

	vals := make([]float64, 0, len(rec)-1)
	for j, cell := range rec[1:] {
		v, err := parseFloat(cell)
		if err != nil {
			return "", nil, &ParseError{Line: line, Column: header[j+1], Value: cell, Err: err}
		}
		vals = append(vals, v)
	}

	return rec[0], vals, nil
}

// WriteExpression writes m as CSV with a full header row.
func WriteExpression(w io.Writer, m *ExpressionMatrix, comma rune) error {
	cw := newWriter(w, comma)

	if err := cw.Write(append([]string{m.KeyHeader}, m.Samples...)); err != nil {
		return pfx.Err(err)
	}

	row := make([]string, 0, len(m.Samples)+1)
	for i, key := range m.Keys {
		row = append(row[:0], key)
		for j := range m.Samples {
			row = append(row, formatFloat(m.Values.At(i, j)))
		}
		if err := cw.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// ExpressionIndex knows where every row of an expression file lives without
// having parsed any of its values.
type ExpressionIndex struct {
	KeyHeader string
	Samples   []string

	header []string
	ram    *ramcsv.RAMCSV
}

// IndexExpression scans an expression file held behind src.
func IndexExpression(src io.ReaderAt, size int64, opts Options) (*ExpressionIndex, error) {
	comma := opts.Comma
	if comma == 0 {
		comma = dereport.PeekDelimiter(bufio.NewReader(io.NewSectionReader(src, 0, size)))
	}

	tmpl := csv.NewReader(nil)
	tmpl.Comma = comma
	tmpl.TrimLeadingSpace = trimLeadingSpace(comma)

	ram, err := ramcsv.New(src, size, tmpl)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	header, err := ram.Header()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("no header row")}
	} else if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	width := len(header)
	if ram.Len() > 1 {
		first, err := ram.Read(1)
		if err != nil {
			return nil, &ParseError{Line: 2, Err: err}
		}
		width = len(first)
	}
	header = normalizeHeader(header, width)

	return &ExpressionIndex{
		KeyHeader: header[0],
		Samples:   append([]string(nil), header[1:]...),
		header:    header,
		ram:       ram,
	}, nil
}

// Rows is the number of features in the file.
func (x *ExpressionIndex) Rows() int {
	return x.ram.Rows()
}

// Keys returns every feature key in file order.
func (x *ExpressionIndex) Keys() []string {
	return x.ram.Keys()
}

// Load parses only the rows named by keys, in that order.
func (x *ExpressionIndex) Load(keys []string) (*ExpressionMatrix, error) {
	data := make([]float64, 0, len(keys)*len(x.Samples))
	for _, key := range keys {
		line, ok := x.ram.Lookup(key)
		if !ok {
			return nil, &MismatchError{Key: key, MissingFrom: "expression", AnnotationRows: -1, ExpressionRows: x.Rows()}
		}

		rec, err := x.ram.Read(line)
		if err != nil {
			return nil, &ParseError{Line: line + 1, Err: err}
		}

		_, vals, err := parseExpressionRow(rec, x.header, line+1)
		if err != nil {
			return nil, err
		}
		data = append(data, vals...)
	}

	return NewExpressionMatrix(x.KeyHeader, append([]string(nil), keys...), x.Samples, data)
}
