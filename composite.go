package fontatlas

import (
	"fmt"
	"image"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/internal/gamma"
)

// Composite fills the reserved rectangles of every style, then sets the
// fallback glyph and rescales the font to the requested size. A style that
// fails is logged and left unready; the others still complete.
func (b *build) Composite(ab atlas.Builder) error {
	var table *gamma.Table
	if g := b.m.Gamma(); !gamma.IsBaseline(g) {
		table = b.m.gammas.Table(g)
	}

	for _, set := range b.sets {
		if err := b.compositeStyle(ab, set, table); err != nil {
			Logger().Warn("fontatlas: composite failed", "style", set.style.String(), "err", err)
			continue
		}
		b.ready[set.style] = set.font
	}
	return nil
}

func (b *build) compositeStyle(ab atlas.Builder, set *styleSet, table *gamma.Table) error {
	s := set.style
	weight := s.weight()
	lineHeight := set.desc.Header.LineHeight

	for _, gr := range set.glyphs {
		pl, err := ab.Rect(gr.id)
		if err != nil {
			return &GlyphError{Code: gr.glyph.Code, Err: err}
		}
		if pl.Width == 0 || pl.Height == 0 {
			continue
		}
		page, err := ab.Page(pl.Page)
		if err != nil {
			return &GlyphError{Code: gr.glyph.Code, Err: err}
		}
		tex, ok := b.m.cache.GlyphTexture(s.Family, gr.glyph)
		if !ok {
			return &GlyphError{Code: gr.glyph.Code, Err: ErrMissingTexture}
		}

		dst, ok := page.SubImage(pl.Rect()).(*image.NRGBA)
		if !ok || dst.Bounds() != pl.Rect() {
			return &GlyphError{Code: gr.glyph.Code, Err: fmt.Errorf("placement %v outside page %d", pl.Rect(), pl.Page)}
		}
		src := newGlyphBitmap(tex, gr.glyph)
		if gr.allowance == 0 {
			copyAlpha(dst, src)
		} else {
			synthesize(dst, src, weight, s.Skew, lineHeight, int(gr.glyph.CurrentOffsetY))
		}
		if table != nil {
			applyGamma(dst, table)
		}
	}

	b.finishFont(set)
	return nil
}

// finishFont sets the fallback glyph and the metrics, converts them to the
// requested size and rebuilds the lookup index.
func (b *build) finishFont(set *styleSet) {
	f := set.font
	h := set.desc.Header

	guard(set.style, "fallback", func() {
		for _, r := range b.m.opts.fallback {
			if _, ok := f.FindGlyph(r); ok {
				if err := f.SetFallback(r); err != nil {
					panic(err)
				}
				return
			}
		}
	})
	guard(set.style, "metrics", func() {
		f.SetMetrics(atlas.Metrics{
			FontSize: h.Size,
			Ascent:   float32(h.Ascent),
			Descent:  float32(h.Descent()),
		})
		f.ScaleMetrics(set.style.scale(h.Size))
	})
	if f.GlyphCount() > 0 {
		guard(set.style, "lookup", f.BuildLookup)
	}
}

// guard runs one font-object mutation and logs a panic from it instead of
// aborting the style.
func guard(s Style, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("fontatlas: font metadata step failed",
				"style", s.String(), "step", step, "panic", r)
		}
	}()
	fn()
}
