package atlas

import "image"

// RectID identifies a reserved rectangle within one build.
type RectID int

// Offset is a glyph placement offset relative to the pen position and the
// top of the line.
type Offset struct {
	X, Y float32
}

// FontConfig describes a placeholder font.
type FontConfig struct {
	// Name is a debug label.
	Name string

	// SizePixels is the nominal font size of the placeholder.
	SizePixels float32

	// OversampleH and OversampleV are the rasterizer oversampling factors.
	// Pre-rasterized bitmaps use 1.
	OversampleH int
	OversampleV int

	// PixelSnapH aligns glyph positions to whole pixels.
	PixelSnapH bool
}

// Metrics are the font-wide metrics of a font object.
type Metrics struct {
	FontSize float32
	Ascent   float32
	Descent  float32
}

// Glyph is one glyph of a built font object.
type Glyph struct {
	Codepoint rune

	// AdvanceX is the pen advance.
	AdvanceX float32

	// X0, Y0, X1, Y1 bound the glyph quad relative to the pen position and
	// the top of the line.
	X0, Y0, X1, Y1 float32

	// U0, V0, U1, V1 are the normalized page coordinates.
	U0, V0, U1, V1 float32

	// Page is the atlas page holding the glyph pixels.
	Page int
}

// Placement locates a reserved rectangle after rasterization.
type Placement struct {
	Page          int
	X, Y          int
	Width, Height int
	Codepoint     rune
}

// Rect returns the placement as an image rectangle on its page.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Font is the narrow view of a font object the compositor manipulates.
type Font interface {
	// Config returns the configuration the font was created with.
	Config() FontConfig

	// ForEachGlyph calls fn for every glyph; fn may modify the glyph.
	ForEachGlyph(fn func(g *Glyph))

	// GlyphCount returns the number of glyphs.
	GlyphCount() int

	// FindGlyph returns the glyph for r.
	FindGlyph(r rune) (*Glyph, bool)

	// SetMetrics replaces the font-wide metrics.
	SetMetrics(m Metrics)

	// SetFallback selects the glyph used for code points the font lacks.
	SetFallback(r rune) error

	// ScaleMetrics multiplies every size-dependent metric by scale.
	ScaleMetrics(scale float32)

	// BuildLookup rebuilds the code point index.
	BuildLookup()
}

// Builder is the atlas builder the reservation and compositing passes talk
// to. Pages and placements become available only after the builder has
// rasterized.
type Builder interface {
	// CreateFont adds a placeholder font object.
	CreateFont(cfg FontConfig) Font

	// MaxRect returns the largest rectangle one page can hold.
	MaxRect() (w, h int)

	// ReserveRect requests a w×h rectangle for glyph r of font f.
	ReserveRect(f Font, r rune, w, h int, advance float32, offset Offset) (RectID, error)

	// AddKerningPair registers a kerning adjustment on f.
	AddKerningPair(f Font, left, right rune, adjust float32) error

	// PageCount returns the number of rasterized pages.
	PageCount() int

	// Page returns the pixels of a rasterized page.
	Page(index int) (*image.NRGBA, error)

	// Rect returns where a reserved rectangle was placed.
	Rect(id RectID) (Placement, error)
}

// Hooks are the two lifecycle calls an atlas owner makes during a build:
// Reserve before rasterization, Composite after it.
type Hooks interface {
	Reserve(b Builder) error
	Composite(b Builder) error
}
