package heatmap

import (
	"image/color"
	"io"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

// Fonts tried, in order, for vector output. Labels are omitted if none can be
// found on this system.
var localFonts = []string{"DejaVuSans", "LiberationSans-Regular", "Arial", "Helvetica", "NimbusSans-Regular"}

var (
	labelFamily     *canvas.FontFamily
	labelFamilyOnce sync.Once
)

func loadLabelFamily() *canvas.FontFamily {
	labelFamilyOnce.Do(func() {
		family := canvas.NewFontFamily("labels")
		for _, name := range localFonts {
			if err := family.LoadLocalFont(name, canvas.FontRegular); err == nil {
				labelFamily = family
				return
			}
		}
	})

	return labelFamily
}

// canvasPainter draws onto a tdewolff/canvas page measured in millimetres.
type canvasPainter struct {
	c      *canvas.Canvas
	ctx    *canvas.Context
	format Format
	family *canvas.FontFamily
}

func newCanvasPainter(l *Layout, f Format) *canvasPainter {
	c := canvas.New(l.Width, l.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	return &canvasPainter{
		c:      c,
		ctx:    ctx,
		format: f,
		family: loadLabelFamily(),
	}
}

func (p *canvasPainter) Background(col color.Color) {
	p.Rect(Rect{X: 0, Y: 0, W: p.c.W, H: p.c.H, Color: rgba(col)})
}

func (p *canvasPainter) Grid(l *Layout) {
	for _, r := range l.Cells() {
		p.Rect(r)
	}
}

func (p *canvasPainter) Rect(r Rect) {
	p.ctx.SetFillColor(r.Color)
	p.ctx.SetStrokeColor(canvas.Transparent)
	p.ctx.DrawPath(r.X, r.Y, canvas.Rectangle(r.W, r.H))
}

func (p *canvasPainter) Line(s Segment) {
	path := &canvas.Path{}
	path.MoveTo(s.X1, s.Y1)
	path.LineTo(s.X2, s.Y2)

	p.ctx.SetFillColor(canvas.Transparent)
	p.ctx.SetStrokeColor(lineColor)
	p.ctx.SetStrokeWidth(lineWidth)
	p.ctx.DrawPath(0, 0, path)
}

func (p *canvasPainter) Text(t Label) {
	if p.family == nil || t.Text == "" {
		return
	}

	align := canvas.Left
	switch t.Anchor {
	case AnchorCenter:
		align = canvas.Center
	case AnchorRight:
		align = canvas.Right
	}

	face := p.family.Face(t.Size, labelColor, canvas.FontRegular, canvas.FontNormal)
	line := canvas.NewTextLine(face, t.Text, align)

	if !t.Vertical {
		p.ctx.DrawText(t.X, t.Y, line)
		return
	}

	p.ctx.Push()
	p.ctx.RotateAbout(90, t.X, t.Y)
	p.ctx.DrawText(t.X, t.Y, line)
	p.ctx.Pop()
}

func (p *canvasPainter) WriteTo(w io.Writer) error {
	var write canvas.Writer
	switch p.format {
	case SVG:
		write = renderers.SVG()
	default:
		write = renderers.PDF()
	}

	return write(w, p.c)
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
