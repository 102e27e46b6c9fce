package report

import (
	"errors"
	"io/fs"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dereport/heatmap"
	"github.com/carbocation/dereport/table"
)

// Kind classifies why an index failed.
type Kind int

const (
	KindNone Kind = iota
	KindFileNotFound
	KindParse
	KindMismatch
	KindRender
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindFileNotFound:
		return "file not found"
	case KindParse:
		return "parse error"
	case KindMismatch:
		return "mismatch"
	case KindRender:
		return "render error"
	}

	return "error"
}

// KindOf inspects the chain of err.
func KindOf(err error) Kind {
	var parseErr *table.ParseError
	var mismatchErr *table.MismatchError
	var renderErr *heatmap.RenderError

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		return KindFileNotFound
	case errors.As(err, &mismatchErr):
		return KindMismatch
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &renderErr):
		return KindRender
	}

	return KindOther
}
