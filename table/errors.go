package table

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is wrapped by a ParseError when a required column is absent
// from the header.
var ErrMissingColumn = errors.New("required column is missing")

// ParseError describes a malformed table. Line is 1-based and counts the
// header; zero means the problem is not tied to one line.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s on line %d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s in column %q", msg, e.Column)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s (value %q)", msg, e.Value)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// MismatchError reports that an annotation table and an expression matrix do
// not describe the same features.
type MismatchError struct {
	AnnotationRows int
	ExpressionRows int

	// Key, if set, is the first key found in one table but not the other.
	// MissingFrom names the table lacking it.
	Key         string
	MissingFrom string
}

func (e *MismatchError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("row key %q is missing from the %s table", e.Key, e.MissingFrom)
	}

	return fmt.Sprintf("annotation has %d rows but expression has %d rows", e.AnnotationRows, e.ExpressionRows)
}
