package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// AnnotationTable holds one row per feature. The first column of the file is
// the row key; every other column is kept verbatim in Cells. The adjusted
// significance column is additionally parsed into BH, where missing values are
// null.
type AnnotationTable struct {
	KeyHeader string
	Columns   []string
	Keys      []string
	Cells     [][]string
	BH        []null.Float

	bhCol   int
	nameCol int
}

// Len is the number of features.
func (a *AnnotationTable) Len() int {
	return len(a.Keys)
}

// Column returns the position of the named column within Cells rows.
func (a *AnnotationTable) Column(name string) (int, bool) {
	for i, v := range a.Columns {
		if v == name {
			return i, true
		}
	}

	return -1, false
}

// BHColumn is the header of the parsed significance column.
func (a *AnnotationTable) BHColumn() string {
	return a.Columns[a.bhCol]
}

// Name returns the feature name for row i, falling back to its key.
func (a *AnnotationTable) Name(i int) string {
	if a.nameCol >= 0 {
		if v := a.Cells[i][a.nameCol]; !isMissing(v) {
			return v
		}
	}

	return a.Keys[i]
}

// ReadAnnotation parses an annotation table. A header is required; a header
// with no rows yields an empty table.
func ReadAnnotation(r io.Reader, opts Options) (*AnnotationTable, error) {
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
	if len(header) < 2 {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("expected a key column and at least one more column, found %d columns", len(header))}
	}

	out := &AnnotationTable{
		KeyHeader: header[0],
		Columns:   append([]string(nil), header[1:]...),
		Keys:      make([]string, 0, len(records)-1),
		Cells:     make([][]string, 0, len(records)-1),
		BH:        make([]null.Float, 0, len(records)-1),
		bhCol:     -1,
		nameCol:   -1,
	}

	wantBH := opts.bhColumn()
	for i, v := range out.Columns {
		if v == wantBH {
			out.bhCol = i
			break
		}
	}
	if out.bhCol < 0 {
		return nil, &ParseError{Line: 1, Column: wantBH, Err: ErrMissingColumn}
	}

	out.nameCol, err = findNameColumn(out.Columns, opts.NameColumn)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(records))
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) != len(header) {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("expected %d fields, found %d", len(header), len(rec))}
		}

		key := rec[0]
		if prior, exists := seen[key]; exists {
			return nil, &ParseError{Line: line, Column: out.KeyHeader, Value: key, Err: fmt.Errorf("duplicate key, first seen on line %d", prior)}
		}
		seen[key] = line

		cells := append([]string(nil), rec[1:]...)
		bh, err := parseBH(cells[out.bhCol])
		if err != nil {
			return nil, &ParseError{Line: line, Column: wantBH, Value: cells[out.bhCol], Err: err}
		}

		out.Keys = append(out.Keys, key)
		out.Cells = append(out.Cells, cells)
		out.BH = append(out.BH, bh)
	}

	return out, nil
}

func findNameColumn(columns []string, requested string) (int, error) {
	if requested != "" {
		for i, v := range columns {
			if v == requested {
				return i, nil
			}
		}
		return -1, &ParseError{Line: 1, Column: requested, Err: ErrMissingColumn}
	}

	for _, candidate := range nameCandidates {
		for i, v := range columns {
			if strings.EqualFold(v, candidate) {
				return i, nil
			}
		}
	}

	return -1, nil
}

func parseBH(s string) (null.Float, error) {
	if isMissing(s) {
		return null.Float{}, nil
	}

	v, err := parseFloat(s)
	if err != nil {
		return null.Float{}, err
	}
	if v < 0 || v > 1 {
		return null.Float{}, fmt.Errorf("adjusted significance must lie in [0,1]")
	}

	return null.FloatFrom(v), nil
}

// WriteAnnotation writes a as CSV with a full header row.
func WriteAnnotation(w io.Writer, a *AnnotationTable, comma rune) error {
	cw := newWriter(w, comma)

	if err := cw.Write(append([]string{a.KeyHeader}, a.Columns...)); err != nil {
		return pfx.Err(err)
	}

	row := make([]string, 0, len(a.Columns)+1)
	for i, key := range a.Keys {
		row = append(row[:0], key)
		row = append(row, a.Cells[i]...)
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
