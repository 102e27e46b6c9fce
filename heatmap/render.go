package heatmap

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/carbocation/dereport"
)

type Format string

const (
	PDF Format = "pdf"
	SVG Format = "svg"
	PNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case PDF, SVG, PNG:
		return f, nil
	}

	return "", fmt.Errorf("unsupported image format %q (want pdf, svg or png)", s)
}

// Ext is the file extension, with its leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

const lineWidth = 0.2 // mm

var (
	lineColor  = color.RGBA{A: 0xff}
	labelColor = color.RGBA{A: 0xff}
)

// Painter draws layout primitives onto some backend.
type Painter interface {
	Background(c color.Color)
	Grid(l *Layout)
	Rect(r Rect)
	Line(s Segment)
	Text(t Label)
	WriteTo(w io.Writer) error
}

// NewPainter returns the backend for f, sized for l.
func NewPainter(l *Layout, f Format) (Painter, error) {
	switch f {
	case PDF, SVG:
		return newCanvasPainter(l, f), nil
	case PNG:
		return newGGPainter(l, DefaultPixelsPerMM), nil
	}

	return nil, fmt.Errorf("unsupported image format %q", f)
}

// Draw paints every element of l.
func Draw(p Painter, l *Layout) {
	p.Background(color.White)
	p.Grid(l)
	for _, r := range l.Key {
		p.Rect(r)
	}
	for _, s := range l.Dendrogram {
		p.Line(s)
	}
	for _, t := range l.Labels {
		p.Text(t)
	}
}

// Render draws l in format f to w.
func Render(w io.Writer, l *Layout, f Format) error {
	p, err := NewPainter(l, f)
	if err != nil {
		return &RenderError{Op: "render", Err: err}
	}

	Draw(p, l)

	if err := p.WriteTo(w); err != nil {
		return &RenderError{Op: "encode " + string(f), Err: err}
	}

	return nil
}

// WriteFile renders l to path. Nothing appears at path unless the whole image
// was encoded.
func WriteFile(path string, l *Layout, f Format) error {
	return dereport.WriteFileAtomic(path, func(w io.Writer) error {
		return Render(w, l, f)
	})
}
