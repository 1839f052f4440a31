package fontatlas

import (
	"fmt"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/fdt"
)

// glyphReservation is one reserved rectangle and the glyph that fills it.
type glyphReservation struct {
	id        atlas.RectID
	glyph     fdt.Glyph
	allowance int
}

// styleSet is the reservation state of one style during a build.
type styleSet struct {
	style  Style
	desc   *fdt.Descriptor
	font   atlas.Font
	glyphs []glyphReservation
	area   int // reserved pixels
}

// build implements atlas.Hooks for one rebuild. It lives only for the
// duration of the builder's Build call.
type build struct {
	m      *Manager
	styles []Style
	sets   []*styleSet
	ready  map[Style]atlas.Font
}

func newBuild(m *Manager, styles []Style) *build {
	return &build{
		m:      m,
		styles: styles,
		ready:  make(map[Style]atlas.Font, len(styles)),
	}
}

// Reserve creates a placeholder font per style and reserves one rectangle
// per displayable glyph. Styles of unknown families and styles whose
// reservation fails are skipped.
func (b *build) Reserve(ab atlas.Builder) error {
	for _, s := range b.styles {
		d, ok := b.m.cache.Descriptor(s.Family)
		if !ok {
			b.m.warnUnknown(s)
			continue
		}
		set, err := reserveStyle(ab, s, d)
		if err != nil {
			Logger().Warn("fontatlas: reserve failed",
				"style", s.String(), "err", &StyleError{Style: s, Err: err})
			continue
		}
		b.sets = append(b.sets, set)
		Logger().Debug("fontatlas: reserved",
			"style", s.String(),
			"glyphs", len(set.glyphs),
			"kerning", len(d.Kerning))
	}
	return nil
}

// largest returns the reserved style covering the most page area. Ties go
// to the later style.
func (b *build) largest() (Style, bool) {
	var best *styleSet
	for _, set := range b.sets {
		if best == nil || set.area >= best.area {
			best = set
		}
	}
	if best == nil {
		return Style{}, false
	}
	return best.style, true
}

func reserveStyle(ab atlas.Builder, s Style, d *fdt.Descriptor) (*styleSet, error) {
	weight := s.weight()
	maxW, maxH := ab.MaxRect()

	// Size every rectangle first so an oversized style reserves nothing.
	var glyphs []glyphReservation
	for g := range d.DisplayableGlyphs() {
		extra := allowance(weight, s.Skew, d.Header.LineHeight, g)
		w, h := int(g.BoundingWidth)+extra, int(g.BoundingHeight)
		if w > maxW || h > maxH {
			return nil, fmt.Errorf("reserve %U: %w", g.Code, &atlas.TooLargeError{Width: w, Height: h})
		}
		glyphs = append(glyphs, glyphReservation{glyph: g, allowance: extra})
	}

	f := ab.CreateFont(atlas.FontConfig{
		Name:        s.String(),
		SizePixels:  d.Header.Size,
		OversampleH: 1,
		OversampleV: 1,
		PixelSnapH:  false,
	})
	set := &styleSet{style: s, desc: d, font: f, glyphs: glyphs}

	for i := range set.glyphs {
		gr := &set.glyphs[i]
		g := gr.glyph
		w, h := int(g.BoundingWidth)+gr.allowance, int(g.BoundingHeight)
		id, err := ab.ReserveRect(f, g.Code, w, h,
			float32(g.AdvanceWidth()),
			atlas.Offset{Y: float32(g.CurrentOffsetY)})
		if err != nil {
			return nil, fmt.Errorf("reserve %U: %w", g.Code, err)
		}
		gr.id = id
		set.area += w * h
	}

	for _, k := range d.Kerning {
		if err := ab.AddKerningPair(f, k.Left, k.Right, float32(k.Offset)); err != nil {
			return nil, fmt.Errorf("kerning %U %U: %w", k.Left, k.Right, err)
		}
	}
	return set, nil
}
