package fontatlas

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fontatlas/atlas"
)

// Face exposes a built font as a font.Face. Glyph masks are read from the
// atlas page; glyphs of a style whose size differs from the native size are
// resampled bilinearly.
//
// A Face does not own the font; it stays valid after the font is replaced
// by a later rebuild.
type Face struct {
	f *atlas.PackedFont
}

var _ font.Face = (*Face)(nil)

// NewFace wraps a built font.
func NewFace(f *atlas.PackedFont) *Face {
	return &Face{f: f}
}

// Close implements font.Face.
func (*Face) Close() error { return nil }

func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(v) * 64))
}

// Glyph implements font.Face.
func (fc *Face) Glyph(dot fixed.Point26_6, r rune) (
	dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {

	g, ok := fc.f.Glyph(r)
	if !ok {
		return image.Rectangle{}, nil, image.Point{}, 0, false
	}
	advance = toFixed(g.AdvanceX)

	page := fc.f.Page(g.Page)
	if page == nil || g.X1 <= g.X0 || g.Y1 <= g.Y0 {
		return image.Rectangle{}, nil, image.Point{}, advance, true
	}

	ascent := fc.f.Metrics().Ascent
	x := int(math.Round(float64(dot.X)/64 + float64(g.X0)))
	y := int(math.Round(float64(dot.Y)/64 + float64(g.Y0-ascent)))
	w := int(math.Round(float64(g.X1 - g.X0)))
	h := int(math.Round(float64(g.Y1 - g.Y0)))
	dr = image.Rect(x, y, x+w, y+h)

	pb := page.Bounds()
	src := image.Rect(
		int(math.Round(float64(g.U0)*float64(pb.Dx()))),
		int(math.Round(float64(g.V0)*float64(pb.Dy()))),
		int(math.Round(float64(g.U1)*float64(pb.Dx()))),
		int(math.Round(float64(g.V1)*float64(pb.Dy()))),
	)
	if src.Dx() == w && src.Dy() == h {
		return dr, page, src.Min, advance, true
	}

	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), page, src, draw.Src, nil)
	return dr, scaled, image.Point{}, advance, true
}

// GlyphBounds implements font.Face. Bounds are relative to the dot on the
// baseline.
func (fc *Face) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	g, ok := fc.f.Glyph(r)
	if !ok {
		return fixed.Rectangle26_6{}, 0, false
	}
	ascent := fc.f.Metrics().Ascent
	bounds = fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: toFixed(g.X0), Y: toFixed(g.Y0 - ascent)},
		Max: fixed.Point26_6{X: toFixed(g.X1), Y: toFixed(g.Y1 - ascent)},
	}
	return bounds, toFixed(g.AdvanceX), true
}

// GlyphAdvance implements font.Face.
func (fc *Face) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	g, ok := fc.f.Glyph(r)
	if !ok {
		return 0, false
	}
	return toFixed(g.AdvanceX), true
}

// Kern implements font.Face.
func (fc *Face) Kern(r0, r1 rune) fixed.Int26_6 {
	return toFixed(fc.f.Kern(r0, r1))
}

// Metrics implements font.Face. XHeight and CapHeight come from the glyph
// boxes of 'x' and 'H' when the font has them.
func (fc *Face) Metrics() font.Metrics {
	m := fc.f.Metrics()
	out := font.Metrics{
		Height:     toFixed(m.Ascent + m.Descent),
		Ascent:     toFixed(m.Ascent),
		Descent:    toFixed(m.Descent),
		CaretSlope: image.Point{X: 0, Y: 1},
	}
	if g, ok := fc.f.FindGlyph('x'); ok {
		out.XHeight = toFixed(m.Ascent - g.Y0)
	}
	if g, ok := fc.f.FindGlyph('H'); ok {
		out.CapHeight = toFixed(m.Ascent - g.Y0)
	}
	return out
}
