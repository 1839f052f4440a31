package fontatlas

import (
	"context"
	"image"
	"testing"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/family"
	"github.com/gogpu/fontatlas/fdt"
	"github.com/gogpu/fontatlas/internal/fdttest"
	"github.com/gogpu/fontatlas/resource"
	"github.com/gogpu/fontatlas/sched"
)

const (
	testFamily = family.Axis12
	sheetSize  = 100
)

// Glyphs of the test descriptor. 'A' reads the alpha byte, '?' the red byte
// and 'B' the green byte of the sheet.
var (
	glyphA = fdt.Glyph{Code: 'A', TextureIndex: 3, OffsetX: 0, OffsetY: 0,
		BoundingWidth: 10, BoundingHeight: 10, NextOffsetX: 2}
	glyphQ = fdt.Glyph{Code: '?', TextureIndex: 0, OffsetX: 20, OffsetY: 0,
		BoundingWidth: 6, BoundingHeight: 8, NextOffsetX: 1, CurrentOffsetY: 2}
	glyphB = fdt.Glyph{Code: 'B', TextureIndex: 1, OffsetX: 40, OffsetY: 10,
		BoundingWidth: 8, BoundingHeight: 12, NextOffsetX: 1, CurrentOffsetY: 1}
	glyphCtl = fdt.Glyph{Code: 0x1F, OffsetX: 60, OffsetY: 60, BoundingWidth: 1, BoundingHeight: 1}
)

type fixture struct {
	cache *resource.Cache
	sheet []byte
}

// newFixture loads a one-family cache over a sheet whose bytes follow a
// fixed non-uniform pattern.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	sheet := make([]byte, sheetSize*sheetSize*4)
	for i := range sheet {
		sheet[i] = byte(i*37 + i/400)
	}
	return newFixtureSheet(t, sheet)
}

func newFixtureSheet(t *testing.T, sheet []byte) *fixture {
	t.Helper()
	desc := fdttest.New(12, 16, 12, sheetSize, sheetSize).
		Glyph(glyphA).Glyph(glyphQ).Glyph(glyphB).Glyph(glyphCtl).
		Kern('A', 'B', -1).
		Bytes()

	src := resource.NewMapSource()
	src.SetBytes("test.fdt", desc)
	src.SetTexture("sheet1.tex", sheetSize, sheetSize, sheet)

	table := family.Table{testFamily: {Descriptor: "test.fdt", TextureTemplate: "sheet%d.tex"}}
	cache, err := resource.Load(context.Background(), table, src)
	if err != nil {
		t.Fatalf("resource.Load: %v", err)
	}
	return &fixture{cache: cache, sheet: sheet}
}

// manager returns a Manager whose rebuilds run when the test calls
// RunPending on the returned queue.
func (fx *fixture) manager(t *testing.T, opts ...Option) (*Manager, *sched.Queue) {
	t.Helper()
	packer, err := atlas.NewPacker(atlas.Config{PageWidth: 256, PageHeight: 256, Padding: 1, MaxPages: 4})
	if err != nil {
		t.Fatalf("NewPacker: %v", err)
	}
	q := &sched.Queue{}
	opts = append([]Option{WithScheduler(q), WithBuilder(packer)}, opts...)
	m := New(fx.cache, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m, q
}

// sheetAlpha returns the source byte a glyph reads at (x, y) of its box.
func (fx *fixture) sheetAlpha(g fdt.Glyph, x, y int) uint8 {
	return fx.sheet[((int(g.OffsetY)+y)*sheetSize+int(g.OffsetX)+x)*4+g.ChannelOffset()]
}

// ready returns the built font of h or fails the test.
func ready(t *testing.T, h *Handle) *atlas.PackedFont {
	t.Helper()
	f, ok := h.Font()
	if !ok {
		t.Fatalf("font of %v not ready", h.Style())
	}
	pf, ok := f.(*atlas.PackedFont)
	if !ok {
		t.Fatalf("font is %T, want *atlas.PackedFont", f)
	}
	return pf
}

// glyphPixels returns the atlas rectangle of glyph r.
func glyphPixels(t *testing.T, f *atlas.PackedFont, r rune) *image.NRGBA {
	t.Helper()
	g, ok := f.FindGlyph(r)
	if !ok {
		t.Fatalf("glyph %q missing", r)
	}
	page := f.Page(g.Page)
	if page == nil {
		t.Fatalf("page %d missing", g.Page)
	}
	pw, ph := float32(page.Bounds().Dx()), float32(page.Bounds().Dy())
	rect := image.Rect(int(g.U0*pw), int(g.V0*ph), int(g.U1*pw), int(g.V1*ph))
	return page.SubImage(rect).(*image.NRGBA)
}
