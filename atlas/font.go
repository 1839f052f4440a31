package atlas

import (
	"image"
	"sort"
)

type kernPair struct {
	left, right rune
}

// PackedFont is the font object a Packer creates. It is mutated only by
// the goroutine running the build; once published it is read-only.
type PackedFont struct {
	cfg     FontConfig
	metrics Metrics

	glyphs  []Glyph
	index   map[rune]int
	kerning map[kernPair]float32

	fallback    rune
	hasFallback bool

	pages []*image.NRGBA
	owner *Packer
	build int
}

func newPackedFont(owner *Packer, cfg FontConfig) *PackedFont {
	return &PackedFont{
		cfg:     cfg,
		metrics: Metrics{FontSize: cfg.SizePixels},
		kerning: make(map[kernPair]float32),
		owner:   owner,
	}
}

// Config implements Font.
func (f *PackedFont) Config() FontConfig {
	return f.cfg
}

// ForEachGlyph implements Font.
func (f *PackedFont) ForEachGlyph(fn func(g *Glyph)) {
	for i := range f.glyphs {
		fn(&f.glyphs[i])
	}
}

// GlyphCount implements Font.
func (f *PackedFont) GlyphCount() int {
	return len(f.glyphs)
}

// FindGlyph implements Font. Before BuildLookup it falls back to a linear
// scan.
func (f *PackedFont) FindGlyph(r rune) (*Glyph, bool) {
	if f.index != nil {
		i, ok := f.index[r]
		if !ok {
			return nil, false
		}
		return &f.glyphs[i], true
	}
	for i := range f.glyphs {
		if f.glyphs[i].Codepoint == r {
			return &f.glyphs[i], true
		}
	}
	return nil, false
}

// Glyph returns the glyph for r, or the fallback glyph when r is missing.
func (f *PackedFont) Glyph(r rune) (*Glyph, bool) {
	if g, ok := f.FindGlyph(r); ok {
		return g, true
	}
	if f.hasFallback {
		return f.FindGlyph(f.fallback)
	}
	return nil, false
}

// Metrics returns the font-wide metrics.
func (f *PackedFont) Metrics() Metrics {
	return f.metrics
}

// SetMetrics implements Font.
func (f *PackedFont) SetMetrics(m Metrics) {
	f.metrics = m
}

// SetFallback implements Font.
func (f *PackedFont) SetFallback(r rune) error {
	if _, ok := f.FindGlyph(r); !ok {
		return ErrGlyphNotFound
	}
	f.fallback = r
	f.hasFallback = true
	return nil
}

// Fallback returns the fallback code point.
func (f *PackedFont) Fallback() (rune, bool) {
	return f.fallback, f.hasFallback
}

// Kern returns the kerning adjustment between left and right.
func (f *PackedFont) Kern(left, right rune) float32 {
	return f.kerning[kernPair{left, right}]
}

// KerningCount returns the number of registered kerning pairs.
func (f *PackedFont) KerningCount() int {
	return len(f.kerning)
}

// ScaleMetrics implements Font.
func (f *PackedFont) ScaleMetrics(scale float32) {
	f.metrics.FontSize *= scale
	f.metrics.Ascent *= scale
	f.metrics.Descent *= scale
	for i := range f.glyphs {
		g := &f.glyphs[i]
		g.AdvanceX *= scale
		g.X0 *= scale
		g.Y0 *= scale
		g.X1 *= scale
		g.Y1 *= scale
	}
	for k, v := range f.kerning {
		f.kerning[k] = v * scale
	}
}

// BuildLookup implements Font. Glyphs are ordered by code point.
func (f *PackedFont) BuildLookup() {
	sort.SliceStable(f.glyphs, func(i, j int) bool { return f.glyphs[i].Codepoint < f.glyphs[j].Codepoint })
	f.index = make(map[rune]int, len(f.glyphs))
	for i, g := range f.glyphs {
		f.index[g.Codepoint] = i
	}
}

// Page returns the atlas page the font's glyphs were packed into.
func (f *PackedFont) Page(i int) *image.NRGBA {
	if i < 0 || i >= len(f.pages) {
		return nil
	}
	return f.pages[i]
}
