// Package heatmap lays out a clustered heatmap of an expression matrix and
// draws it as PDF, SVG or PNG. All layout coordinates are millimetres with
// the origin at the top left.
package heatmap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/carbocation/dereport/cluster"
	"github.com/carbocation/dereport/table"
	"gonum.org/v1/gonum/stat"
)

const (
	margin         = 5.0
	titleHeight    = 8.0
	dendrogramSize = 15.0
	keyWidth       = 40.0
	keyHeight      = 4.0
	keySteps       = 21
	ptToMM         = 0.3528

	// Average glyph advance as a fraction of the font size.
	glyphWidth = 0.55
)

type Options struct {
	ClusterRows bool
	ClusterCols bool

	// ScaleRows centres and scales each row to unit variance before colouring.
	ScaleRows bool

	Metric  cluster.Metric
	Linkage cluster.Linkage
	Palette Palette

	CellWidth  float64
	CellHeight float64
	FontSize   float64 // points
	Labels     bool
	Title      string
}

// DefaultOptions mirror R's heatmap(): both axes clustered with complete
// linkage on Euclidean distance, rows scaled.
func DefaultOptions() Options {
	return Options{
		ClusterRows: true,
		ClusterCols: true,
		ScaleRows:   true,
		Metric:      cluster.Euclidean,
		Linkage:     cluster.Complete,
		Palette:     DefaultPalette(),
		CellWidth:   6,
		CellHeight:  3,
		FontSize:    6,
		Labels:      true,
	}
}

type Rect struct {
	X, Y, W, H float64
	Color      color.RGBA
}

type Segment struct {
	X1, Y1, X2, Y2 float64
}

type Anchor int

const (
	AnchorLeft Anchor = iota
	AnchorCenter
	AnchorRight
)

// Label is a line of text whose baseline starts (or, per Anchor, is centred
// or ends) at X, Y. Vertical labels read bottom to top.
type Label struct {
	X, Y     float64
	Text     string
	Size     float64 // points
	Anchor   Anchor
	Vertical bool
}

// Layout is everything needed to draw one heatmap.
type Layout struct {
	Width, Height float64

	// Grid[i][j] is the colour of displayed row i and column j. The grid's top
	// left corner is at GridX, GridY.
	Grid         [][]color.RGBA
	GridX, GridY float64
	CellW, CellH float64

	Key        []Rect
	Dendrogram []Segment
	Labels     []Label

	RowOrder []int
	ColOrder []int
	RowTree  *cluster.Tree
	ColTree  *cluster.Tree

	// Min and Max bound the colour scale.
	Min, Max float64
}

// Cells returns the grid as individual rectangles.
func (l *Layout) Cells() []Rect {
	out := make([]Rect, 0, len(l.Grid)*len(l.ColOrder))
	for i, row := range l.Grid {
		for j, c := range row {
			out = append(out, Rect{
				X:     l.GridX + float64(j)*l.CellW,
				Y:     l.GridY + float64(i)*l.CellH,
				W:     l.CellW,
				H:     l.CellH,
				Color: c,
			})
		}
	}

	return out
}

// NewLayout arranges m for drawing. rowLabels, if non-nil, replaces the row
// keys as labels. An axis with a single entry is never clustered.
func NewLayout(m *table.ExpressionMatrix, rowLabels []string, opts Options) (*Layout, error) {
	if m.Rows() == 0 || m.Cols() == 0 || m.Values == nil {
		return nil, &RenderError{Op: "layout", Err: fmt.Errorf("matrix is degenerate (%d rows, %d columns)", m.Rows(), m.Cols())}
	}
	if rowLabels == nil {
		rowLabels = m.Keys
	}
	if len(rowLabels) != m.Rows() {
		return nil, &RenderError{Op: "layout", Err: fmt.Errorf("%d row labels for %d rows", len(rowLabels), m.Rows())}
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		return nil, &RenderError{Op: "layout", Err: fmt.Errorf("cell size must be positive")}
	}

	rows := make([][]float64, m.Rows())
	finite := 0
	for i := range rows {
		rows[i] = m.Row(i)
		for _, v := range rows[i] {
			if !math.IsNaN(v) {
				finite++
			}
		}
	}
	if finite == 0 {
		return nil, &RenderError{Op: "layout", Err: fmt.Errorf("every value is missing")}
	}

	l := &Layout{
		CellW:    opts.CellWidth,
		CellH:    opts.CellHeight,
		RowOrder: identity(m.Rows()),
		ColOrder: identity(m.Cols()),
	}

	// Cluster on the raw values, then scale for display, as R's heatmap does.
	var err error
	if opts.ClusterRows && m.Rows() > 1 {
		if l.RowTree, err = cluster.Cluster(rows, opts.Metric, opts.Linkage); err != nil {
			return nil, &RenderError{Op: "cluster rows", Err: err}
		}
		l.RowOrder = l.RowTree.Order()
	}
	if opts.ClusterCols && m.Cols() > 1 {
		if l.ColTree, err = cluster.Cluster(transpose(rows), opts.Metric, opts.Linkage); err != nil {
			return nil, &RenderError{Op: "cluster columns", Err: err}
		}
		l.ColOrder = l.ColTree.Order()
	}

	display := rows
	if opts.ScaleRows {
		display = scaleRows(rows)
	}
	l.Min, l.Max = colourRange(display, opts.ScaleRows)

	// Vertical space
	top := margin
	if opts.Title != "" {
		l.Labels = append(l.Labels, Label{X: margin, Y: margin + titleHeight*0.6, Text: opts.Title, Size: opts.FontSize * 1.6})
		top += titleHeight
	}
	if l.ColTree != nil {
		top += dendrogramSize
	}
	l.GridY = top

	// Horizontal space
	left := margin
	if l.RowTree != nil {
		left += dendrogramSize
	}
	l.GridX = left

	gridW := float64(m.Cols()) * l.CellW
	gridH := float64(m.Rows()) * l.CellH

	l.Grid = make([][]color.RGBA, m.Rows())
	for i, ri := range l.RowOrder {
		l.Grid[i] = make([]color.RGBA, m.Cols())
		for j, cj := range l.ColOrder {
			l.Grid[i][j] = opts.Palette.At(display[ri][cj], l.Min, l.Max)
		}
	}

	rowLabelSpace, colLabelSpace := 0.0, 0.0
	if opts.Labels {
		rowLabelSpace = textWidth(longest(rowLabels), opts.FontSize) + 2
		colLabelSpace = textWidth(longest(m.Samples), opts.FontSize) + 2

		for i, ri := range l.RowOrder {
			l.Labels = append(l.Labels, Label{
				X:    l.GridX + gridW + 1,
				Y:    l.GridY + (float64(i)+0.5)*l.CellH + opts.FontSize*ptToMM*0.35,
				Text: rowLabels[ri],
				Size: opts.FontSize,
			})
		}
		for j, cj := range l.ColOrder {
			l.Labels = append(l.Labels, Label{
				X:        l.GridX + (float64(j)+0.5)*l.CellW + opts.FontSize*ptToMM*0.35,
				Y:        l.GridY + gridH + 1,
				Text:     m.Samples[cj],
				Size:     opts.FontSize,
				Anchor:   AnchorRight,
				Vertical: true,
			})
		}
	}

	if l.RowTree != nil {
		l.Dendrogram = append(l.Dendrogram, rowDendrogram(l.RowTree, l.GridX-1, l.GridY, l.CellH)...)
	}
	if l.ColTree != nil {
		l.Dendrogram = append(l.Dendrogram, colDendrogram(l.ColTree, l.GridY-1, l.GridX, l.CellW)...)
	}

	// Colour key below the column labels
	keyY := l.GridY + gridH + colLabelSpace + 2
	step := keyWidth / keySteps
	for k := 0; k < keySteps; k++ {
		v := l.Min + (l.Max-l.Min)*float64(k)/float64(keySteps-1)
		l.Key = append(l.Key, Rect{
			X:     l.GridX + float64(k)*step,
			Y:     keyY,
			W:     step,
			H:     keyHeight,
			Color: opts.Palette.At(v, l.Min, l.Max),
		})
	}
	keyLabelY := keyY + keyHeight + opts.FontSize*ptToMM + 1
	l.Labels = append(l.Labels,
		Label{X: l.GridX, Y: keyLabelY, Text: fmt.Sprintf("%.2g", l.Min), Size: opts.FontSize},
		Label{X: l.GridX + keyWidth, Y: keyLabelY, Text: fmt.Sprintf("%.2g", l.Max), Size: opts.FontSize, Anchor: AnchorRight},
	)

	l.Width = l.GridX + math.Max(gridW+rowLabelSpace, keyWidth) + margin
	if opts.Title != "" {
		l.Width = math.Max(l.Width, 2*margin+textWidth(opts.Title, opts.FontSize*1.6))
	}
	l.Height = keyLabelY + margin

	return l, nil
}

// rowDendrogram draws the row tree to the left of the grid with its leaves at
// right, ending at x = right.
func rowDendrogram(t *cluster.Tree, right, gridY, cellH float64) []Segment {
	pos, height := treeGeometry(t)
	scale := treeScale(t)

	out := make([]Segment, 0, 3*len(t.Merges))
	x := func(h float64) float64 { return right - h*scale }
	y := func(p float64) float64 { return gridY + (p+0.5)*cellH }
	for k, m := range t.Merges {
		id := t.N + k
		xp := x(height[id])
		out = append(out,
			Segment{X1: x(height[m.A]), Y1: y(pos[m.A]), X2: xp, Y2: y(pos[m.A])},
			Segment{X1: x(height[m.B]), Y1: y(pos[m.B]), X2: xp, Y2: y(pos[m.B])},
			Segment{X1: xp, Y1: y(pos[m.A]), X2: xp, Y2: y(pos[m.B])},
		)
	}

	return out
}

// colDendrogram draws the column tree above the grid with its leaves at the
// bottom, ending at y = bottom.
func colDendrogram(t *cluster.Tree, bottom, gridX, cellW float64) []Segment {
	pos, height := treeGeometry(t)
	scale := treeScale(t)

	out := make([]Segment, 0, 3*len(t.Merges))
	x := func(p float64) float64 { return gridX + (p+0.5)*cellW }
	y := func(h float64) float64 { return bottom - h*scale }
	for k, m := range t.Merges {
		id := t.N + k
		yp := y(height[id])
		out = append(out,
			Segment{X1: x(pos[m.A]), Y1: y(height[m.A]), X2: x(pos[m.A]), Y2: yp},
			Segment{X1: x(pos[m.B]), Y1: y(height[m.B]), X2: x(pos[m.B]), Y2: yp},
			Segment{X1: x(pos[m.A]), Y1: yp, X2: x(pos[m.B]), Y2: yp},
		)
	}

	return out
}

// treeGeometry places each leaf at its display position and each internal
// node midway between its children.
func treeGeometry(t *cluster.Tree) (pos, height []float64) {
	total := t.N + len(t.Merges)
	pos = make([]float64, total)
	height = make([]float64, total)

	for i, leaf := range t.Order() {
		pos[leaf] = float64(i)
	}
	for k, m := range t.Merges {
		id := t.N + k
		pos[id] = (pos[m.A] + pos[m.B]) / 2
		height[id] = m.Height
	}

	return pos, height
}

func treeScale(t *cluster.Tree) float64 {
	top := t.Height(t.Root())
	if top <= 0 || math.IsInf(top, 0) {
		return 0
	}

	return (dendrogramSize - 2) / top
}

// scaleRows z-scores each row over its non-missing values. Constant rows
// become zero.
func scaleRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		present := make([]float64, 0, len(row))
		for _, v := range row {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}

		mean, sd := math.NaN(), math.NaN()
		if len(present) > 0 {
			mean, sd = stat.MeanStdDev(present, nil)
		}

		out[i] = make([]float64, len(row))
		for j, v := range row {
			switch {
			case math.IsNaN(v):
				out[i][j] = math.NaN()
			case math.IsNaN(sd) || sd == 0:
				out[i][j] = 0
			default:
				out[i][j] = (v - mean) / sd
			}
		}
	}

	return out
}

// colourRange is symmetric about zero for scaled data.
func colourRange(rows [][]float64, symmetric bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	if symmetric {
		lim := math.Max(math.Abs(lo), math.Abs(hi))
		lo, hi = -lim, lim
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	return lo, hi
}

func transpose(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}

	out := make([][]float64, len(rows[0]))
	for j := range out {
		out[j] = make([]float64, len(rows))
		for i := range rows {
			out[j][i] = rows[i][j]
		}
	}

	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

func longest(s []string) string {
	out := ""
	for _, v := range s {
		if len(v) > len(out) {
			out = v
		}
	}

	return out
}

func textWidth(s string, sizePt float64) float64 {
	return float64(len([]rune(s))) * glyphWidth * sizePt * ptToMM
}
