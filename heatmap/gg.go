package heatmap

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// DefaultPixelsPerMM gives roughly 200 dpi raster output.
const DefaultPixelsPerMM = 8.0

// ggPainter rasterizes with fogleman/gg. Labels use a fixed bitmap face, so
// their size does not follow Label.Size.
type ggPainter struct {
	dc    *gg.Context
	scale float64
}

func newGGPainter(l *Layout, pixelsPerMM float64) *ggPainter {
	w := int(math.Ceil(l.Width * pixelsPerMM))
	h := int(math.Ceil(l.Height * pixelsPerMM))

	dc := gg.NewContext(w, h)
	dc.SetFontFace(basicfont.Face7x13)

	return &ggPainter{dc: dc, scale: pixelsPerMM}
}

func (p *ggPainter) px(mm float64) float64 {
	return mm * p.scale
}

func (p *ggPainter) Background(c color.Color) {
	p.dc.SetColor(c)
	p.dc.Clear()
}

// Grid draws one pixel per cell and scales it up with nearest-neighbour
// resampling so that cell edges stay crisp.
func (p *ggPainter) Grid(l *Layout) {
	if len(l.Grid) == 0 || len(l.Grid[0]) == 0 {
		return
	}

	rows, cols := len(l.Grid), len(l.Grid[0])
	small := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i, row := range l.Grid {
		for j, c := range row {
			small.Set(j, i, c)
		}
	}

	w := int(math.Round(p.px(l.CellW * float64(cols))))
	h := int(math.Round(p.px(l.CellH * float64(rows))))
	if w < cols {
		w = cols
	}
	if h < rows {
		h = rows
	}

	big := imaging.Resize(small, w, h, imaging.NearestNeighbor)
	p.dc.DrawImage(big, int(math.Round(p.px(l.GridX))), int(math.Round(p.px(l.GridY))))
}

func (p *ggPainter) Rect(r Rect) {
	p.dc.SetColor(r.Color)
	p.dc.DrawRectangle(p.px(r.X), p.px(r.Y), p.px(r.W), p.px(r.H))
	p.dc.Fill()
}

func (p *ggPainter) Line(s Segment) {
	p.dc.SetColor(lineColor)
	p.dc.SetLineWidth(math.Max(1, p.px(lineWidth)))
	p.dc.DrawLine(p.px(s.X1), p.px(s.Y1), p.px(s.X2), p.px(s.Y2))
	p.dc.Stroke()
}

func (p *ggPainter) Text(t Label) {
	if t.Text == "" {
		return
	}

	ax := 0.0
	switch t.Anchor {
	case AnchorCenter:
		ax = 0.5
	case AnchorRight:
		ax = 1
	}

	x, y := p.px(t.X), p.px(t.Y)
	p.dc.SetColor(labelColor)
	if !t.Vertical {
		p.dc.DrawStringAnchored(t.Text, x, y, ax, 0)
		return
	}

	p.dc.Push()
	p.dc.RotateAbout(gg.Radians(-90), x, y)
	p.dc.DrawStringAnchored(t.Text, x, y, ax, 0)
	p.dc.Pop()
}

func (p *ggPainter) WriteTo(w io.Writer) error {
	return p.dc.EncodePNG(w)
}
