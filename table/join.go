package table

import (
	"bytes"
	"encoding/csv"
	"errors"
)

// VerifyKeys checks that the annotation and expression tables carry the same
// number of rows and the same set of keys. Row order is irrelevant.
func VerifyKeys(annotationKeys, expressionKeys []string) error {
	if len(annotationKeys) != len(expressionKeys) {
		return &MismatchError{AnnotationRows: len(annotationKeys), ExpressionRows: len(expressionKeys)}
	}

	have := make(map[string]struct{}, len(expressionKeys))
	for _, k := range expressionKeys {
		have[k] = struct{}{}
	}

	for _, k := range annotationKeys {
		if _, ok := have[k]; !ok {
			return &MismatchError{
				AnnotationRows: len(annotationKeys),
				ExpressionRows: len(expressionKeys),
				Key:            k,
				MissingFrom:    "expression",
			}
		}
	}

	// Equal counts, unique keys on both sides, and every annotation key
	// present means the sets are equal.
	return nil
}

// Subset returns the rows of m named by keys, in that order.
func (m *ExpressionMatrix) Subset(keys []string) (*ExpressionMatrix, error) {
	pos := make(map[string]int, len(m.Keys))
	for i, k := range m.Keys {
		pos[k] = i
	}

	data := make([]float64, 0, len(keys)*m.Cols())
	for _, k := range keys {
		i, ok := pos[k]
		if !ok {
			return nil, &MismatchError{AnnotationRows: -1, ExpressionRows: m.Rows(), Key: k, MissingFrom: "expression"}
		}
		data = append(data, m.Row(i)...)
	}

	return NewExpressionMatrix(m.KeyHeader, append([]string(nil), keys...), m.Samples, data)
}

// Join verifies that a and m describe the same features and returns the
// expression rows picked out by s, ordered as in a.
func Join(a *AnnotationTable, m *ExpressionMatrix, s Selection) (*ExpressionMatrix, error) {
	if err := VerifyKeys(a.Keys, m.Keys); err != nil {
		return nil, err
	}

	return m.Subset(s.Keys())
}

// SelectExpression reads the expression rows picked out by s from raw, after
// checking that raw describes exactly the features of a. Only the selected
// rows are parsed, unless a quoted field spans lines; then the whole matrix
// is read and joined instead.
func SelectExpression(raw []byte, a *AnnotationTable, s Selection, opts Options) (*ExpressionMatrix, error) {
	idx, err := IndexExpression(bytes.NewReader(raw), int64(len(raw)), opts)
	if errors.Is(err, csv.ErrQuote) || errors.Is(err, csv.ErrBareQuote) {
		m, err := ReadExpression(bytes.NewReader(raw), opts)
		if err != nil {
			return nil, err
		}
		return Join(a, m, s)
	} else if err != nil {
		return nil, err
	}

	if err := VerifyKeys(a.Keys, idx.Keys()); err != nil {
		return nil, err
	}

	return idx.Load(s.Keys())
}
