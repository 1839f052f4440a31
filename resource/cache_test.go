package resource_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/fontatlas/family"
	"github.com/gogpu/fontatlas/fdt"
	"github.com/gogpu/fontatlas/internal/fdttest"
	"github.com/gogpu/fontatlas/resource"
)

const (
	famA family.Family = 1001
	famB family.Family = 1002
)

// countingSource wraps a MapSource and counts sheet fetches per path.
type countingSource struct {
	*resource.MapSource
	fetches map[string]*atomic.Int64
}

func (s *countingSource) ImagePixels(ctx context.Context, name string) (*resource.Texture, error) {
	if c, ok := s.fetches[name]; ok {
		c.Add(1)
	}
	return s.MapSource.ImagePixels(ctx, name)
}

func testTable() family.Table {
	return family.Table{
		famA: {Descriptor: "a.fdt", TextureTemplate: "sheet%d.tex"},
		famB: {Descriptor: "b.fdt", TextureTemplate: "sheet%d.tex"},
	}
}

func testSource() *countingSource {
	src := resource.NewMapSource()
	src.SetBytes("a.fdt", fdttest.New(12, 16, 13, 64, 64).
		Glyph(fdt.Glyph{Code: 'A', TextureIndex: 0, BoundingWidth: 8, BoundingHeight: 8}).
		Glyph(fdt.Glyph{Code: 'B', TextureIndex: 4, BoundingWidth: 8, BoundingHeight: 8}).
		Bytes())
	src.SetBytes("b.fdt", fdttest.New(18, 24, 20, 64, 64).
		Glyph(fdt.Glyph{Code: 'A', TextureIndex: 1, BoundingWidth: 8, BoundingHeight: 8}).
		Glyph(fdt.Glyph{Code: 'C', TextureIndex: 6, BoundingWidth: 8, BoundingHeight: 8}).
		Bytes())
	src.SetTexture("sheet1.tex", 64, 64, fdttest.Sheet(64, 64, 0xFF))
	src.SetTexture("sheet2.tex", 64, 64, fdttest.Sheet(64, 64, 0x80))
	return &countingSource{
		MapSource: src,
		fetches: map[string]*atomic.Int64{
			"sheet1.tex": {},
			"sheet2.tex": {},
		},
	}
}

func TestLoad(t *testing.T) {
	src := testSource()
	c, err := resource.Load(context.Background(), testTable(), src, resource.WithWorkers(4))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, f := range c.Families() {
		d, ok := c.Descriptor(f)
		if !ok {
			t.Fatalf("Descriptor(%v) missing", f)
		}
		if d.Header.Size <= 0 || len(d.Glyphs) == 0 {
			t.Errorf("%v: size %v, %d glyphs", f, d.Header.Size, len(d.Glyphs))
		}
	}

	if c.TextureCount() != 2 {
		t.Errorf("TextureCount() = %d, want 2", c.TextureCount())
	}
	for name, n := range src.fetches {
		if n.Load() != 1 {
			t.Errorf("%s fetched %d times, want 1", name, n.Load())
		}
	}

	d, _ := c.Descriptor(famB)
	g, _ := d.Glyph('C')
	tex, ok := c.GlyphTexture(famB, g)
	if !ok || tex.Name != "sheet2.tex" || tex.Pix[0] != 0x80 {
		t.Errorf("GlyphTexture(C) = %v,%v", tex, ok)
	}
	if _, ok := c.GlyphTexture(family.Undefined, g); ok {
		t.Error("GlyphTexture for unknown family should fail")
	}
}

func TestLoadMissingDescriptor(t *testing.T) {
	table := testTable()
	table[2000] = family.Files{Descriptor: "missing.fdt", TextureTemplate: "sheet%d.tex"}

	_, err := resource.Load(context.Background(), table, testSource())
	var le *resource.LoadError
	if !errors.As(err, &le) || le.Path != "missing.fdt" {
		t.Fatalf("Load() error = %v, want LoadError for missing.fdt", err)
	}
	if !errors.Is(err, resource.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadMalformedDescriptor(t *testing.T) {
	src := testSource()
	src.SetBytes("a.fdt", []byte("fcsv0100 but nothing else"))

	_, err := resource.Load(context.Background(), testTable(), src)
	var fe *fdt.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Load() error = %v, want *fdt.FormatError", err)
	}
}

func TestLoadDescriptorWithoutGlyphs(t *testing.T) {
	src := testSource()
	src.SetBytes("b.fdt", fdttest.New(18, 24, 20, 64, 64).Kern('A', 'C', 1).Bytes())

	_, err := resource.Load(context.Background(), testTable(), src)
	var le *resource.LoadError
	if !errors.As(err, &le) || le.Path != "b.fdt" || le.Family != famB {
		t.Fatalf("Load() error = %v, want LoadError for b.fdt", err)
	}
	if !errors.Is(err, resource.ErrNoGlyphs) {
		t.Errorf("Load() error = %v, want ErrNoGlyphs", err)
	}
}

func TestLoadMissingTexture(t *testing.T) {
	src := testSource()
	src.SetBytes("b.fdt", fdttest.New(18, 24, 20, 64, 64).
		Glyph(fdt.Glyph{Code: 'Z', TextureIndex: 8, BoundingWidth: 8, BoundingHeight: 8}).
		Bytes())

	_, err := resource.Load(context.Background(), testTable(), src)
	var le *resource.LoadError
	if !errors.As(err, &le) || le.Path != "sheet3.tex" {
		t.Fatalf("Load() error = %v, want LoadError for sheet3.tex", err)
	}
}

func TestLoadGlyphOutsideSheet(t *testing.T) {
	src := testSource()
	src.SetBytes("a.fdt", fdttest.New(12, 16, 13, 64, 64).
		Glyph(fdt.Glyph{Code: 'A', OffsetX: 60, BoundingWidth: 8, BoundingHeight: 8}).
		Bytes())

	_, err := resource.Load(context.Background(), testTable(), src)
	var be *resource.GlyphBoundsError
	if !errors.As(err, &be) || be.Code != 'A' {
		t.Fatalf("Load() error = %v, want GlyphBoundsError for 'A'", err)
	}
}

func TestLoadEmptyTable(t *testing.T) {
	if _, err := resource.Load(context.Background(), nil, testSource()); !errors.Is(err, resource.ErrNoFamilies) {
		t.Errorf("Load(nil) error = %v, want ErrNoFamilies", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := resource.Load(ctx, testTable(), testSource()); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
