package heatmap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/carbocation/pfx"
	"github.com/icza/gox/imagex/colorx"
)

// Palette is a three-stop diverging colour scale. Missing values are drawn in
// NA.
type Palette struct {
	Low, Mid, High, NA color.RGBA
}

// DefaultPalette runs blue through white to red.
func DefaultPalette() Palette {
	p, _ := ParsePalette("#2166ac", "#f7f7f7", "#b2182b")
	return p
}

// ParsePalette builds a palette from hex colours such as "#b2182b".
func ParsePalette(low, mid, high string) (Palette, error) {
	out := Palette{NA: color.RGBA{R: 0xbd, G: 0xbd, B: 0xbd, A: 0xff}}

	var err error
	if out.Low, err = ParseColor(low); err != nil {
		return out, err
	}
	if out.Mid, err = ParseColor(mid); err != nil {
		return out, err
	}
	if out.High, err = ParseColor(high); err != nil {
		return out, err
	}

	return out, nil
}

// ParseColor reads one hex colour.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorx.ParseHexColor(s)
	if err != nil {
		return c, pfx.Err(fmt.Errorf("%q: %w", s, err))
	}

	return c, nil
}

// At maps v within [lo, hi] onto the palette. Values beyond the range are
// clamped.
func (p Palette) At(v, lo, hi float64) color.RGBA {
	if math.IsNaN(v) {
		return p.NA
	}
	if hi <= lo {
		return p.Mid
	}

	f := (v - lo) / (hi - lo)
	if math.IsNaN(f) {
		// An infinite span leaves no usable position.
		return p.Mid
	}
	f = math.Max(0, math.Min(1, f))
	if f < 0.5 {
		return lerp(p.Low, p.Mid, f*2)
	}

	return lerp(p.Mid, p.High, (f-0.5)*2)
}

func lerp(a, b color.RGBA, f float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}

	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
