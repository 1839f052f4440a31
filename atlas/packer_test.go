package atlas

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

type hookFuncs struct {
	reserve   func(b Builder) error
	composite func(b Builder) error
}

func (h hookFuncs) Reserve(b Builder) error {
	if h.reserve == nil {
		return nil
	}
	return h.reserve(b)
}

func (h hookFuncs) Composite(b Builder) error {
	if h.composite == nil {
		return nil
	}
	return h.composite(b)
}

func smallPacker(t *testing.T, maxPages int) *Packer {
	t.Helper()
	p, err := NewPacker(Config{PageWidth: 64, PageHeight: 64, Padding: 1, MaxPages: maxPages})
	if err != nil {
		t.Fatalf("NewPacker: %v", err)
	}
	return p
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"default", DefaultConfig(), ""},
		{"narrow", Config{PageWidth: 8, PageHeight: 64, MaxPages: 1}, "PageWidth"},
		{"short", Config{PageWidth: 64, PageHeight: 1 << 20, MaxPages: 1}, "PageHeight"},
		{"padding", Config{PageWidth: 64, PageHeight: 64, Padding: -1, MaxPages: 1}, "Padding"},
		{"pages", Config{PageWidth: 64, PageHeight: 64}, "MaxPages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestPacker_Build(t *testing.T) {
	p := smallPacker(t, 2)

	var font Font
	var ids []RectID
	var placements []Placement
	err := p.Build(hookFuncs{
		reserve: func(b Builder) error {
			font = b.CreateFont(FontConfig{Name: "test", SizePixels: 12, OversampleH: 1, OversampleV: 1})
			for i, r := range []rune{'A', 'B', 'C'} {
				id, err := b.ReserveRect(font, r, 10+i, 12, 11, Offset{Y: 2})
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if _, err := b.Page(0); !errors.Is(err, ErrNotBuilt) {
				t.Errorf("Page before rasterization: err = %v, want ErrNotBuilt", err)
			}
			return b.AddKerningPair(font, 'A', 'B', -1)
		},
		composite: func(b Builder) error {
			if b.PageCount() != 1 {
				t.Errorf("PageCount = %d, want 1", b.PageCount())
			}
			for _, id := range ids {
				pl, err := b.Rect(id)
				if err != nil {
					return err
				}
				placements = append(placements, pl)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i, pl := range placements {
		if pl.Width != 10+i || pl.Height != 12 {
			t.Errorf("placement %d size = %dx%d, want %dx12", i, pl.Width, pl.Height, 10+i)
		}
		if !pl.Rect().In(image.Rect(0, 0, 64, 64)) {
			t.Errorf("placement %d = %v outside the page", i, pl.Rect())
		}
		for j := i + 1; j < len(placements); j++ {
			if pl.Rect().Overlaps(placements[j].Rect()) {
				t.Errorf("placements %d and %d overlap", i, j)
			}
		}
	}

	pf := font.(*PackedFont)
	if pf.GlyphCount() != 3 {
		t.Fatalf("GlyphCount = %d, want 3", pf.GlyphCount())
	}
	g, ok := pf.FindGlyph('B')
	if !ok {
		t.Fatal("FindGlyph('B') not found")
	}
	if g.AdvanceX != 11 || g.Y0 != 2 || g.Y1 != 14 || g.X1 != 11 {
		t.Errorf("glyph B = %+v", *g)
	}
	if g.U1 <= g.U0 || g.V1 <= g.V0 {
		t.Errorf("glyph B uv = (%v,%v)-(%v,%v)", g.U0, g.V0, g.U1, g.V1)
	}
	if pf.Kern('A', 'B') != -1 {
		t.Errorf("Kern(A, B) = %v, want -1", pf.Kern('A', 'B'))
	}
	if pf.Page(0) == nil {
		t.Error("font has no page 0")
	}
	if p.Utilization(0) <= 0 {
		t.Error("Utilization(0) = 0")
	}
}

func TestPacker_ZeroSizeRect(t *testing.T) {
	p := smallPacker(t, 1)
	var id RectID
	err := p.Build(hookFuncs{
		reserve: func(b Builder) error {
			f := b.CreateFont(FontConfig{SizePixels: 12})
			var err error
			id, err = b.ReserveRect(f, ' ', 0, 0, 4, Offset{})
			return err
		},
		composite: func(b Builder) error {
			pl, err := b.Rect(id)
			if err != nil {
				return err
			}
			if !pl.Rect().Empty() {
				t.Errorf("placement = %v, want empty", pl.Rect())
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.PageCount() != 0 {
		t.Errorf("PageCount = %d, want 0", p.PageCount())
	}
}

func TestPacker_Errors(t *testing.T) {
	t.Run("negative", func(t *testing.T) {
		p := smallPacker(t, 1)
		err := p.Build(hookFuncs{reserve: func(b Builder) error {
			_, err := b.ReserveRect(b.CreateFont(FontConfig{}), 'A', -1, 1, 0, Offset{})
			return err
		}})
		if !errors.Is(err, ErrInvalidRect) {
			t.Errorf("err = %v, want ErrInvalidRect", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		p := smallPacker(t, 1)
		if w, h := p.MaxRect(); w != 63 || h != 63 {
			t.Errorf("MaxRect = %dx%d, want 63x63", w, h)
		}
		var fitted bool
		err := p.Build(hookFuncs{reserve: func(b Builder) error {
			f := b.CreateFont(FontConfig{})
			if _, err := b.ReserveRect(f, 'B', 63, 63, 0, Offset{}); err != nil {
				return err
			}
			fitted = true
			_, err := b.ReserveRect(f, 'A', 64, 10, 0, Offset{})
			return err
		}})
		if !fitted {
			t.Error("63x63 rect rejected on a 64x64 page with padding 1")
		}
		var tl *TooLargeError
		if !errors.As(err, &tl) || tl.Width != 64 {
			t.Errorf("err = %v, want *TooLargeError", err)
		}
	})

	t.Run("full", func(t *testing.T) {
		p := smallPacker(t, 1)
		err := p.Build(hookFuncs{reserve: func(b Builder) error {
			f := b.CreateFont(FontConfig{})
			for i := 0; i < 5; i++ {
				if _, err := b.ReserveRect(f, rune('A'+i), 60, 30, 0, Offset{}); err != nil {
					return err
				}
			}
			return nil
		}})
		var fe *FullError
		if !errors.As(err, &fe) || fe.MaxPages != 1 {
			t.Errorf("err = %v, want *FullError", err)
		}
	})

	t.Run("stale font", func(t *testing.T) {
		p := smallPacker(t, 1)
		var old Font
		if err := p.Build(hookFuncs{reserve: func(b Builder) error {
			old = b.CreateFont(FontConfig{})
			return nil
		}}); err != nil {
			t.Fatalf("first Build: %v", err)
		}
		err := p.Build(hookFuncs{reserve: func(b Builder) error {
			_, err := b.ReserveRect(old, 'A', 1, 1, 0, Offset{})
			return err
		}})
		if !errors.Is(err, ErrForeignFont) {
			t.Errorf("err = %v, want ErrForeignFont", err)
		}
		if p.Builds() != 2 {
			t.Errorf("Builds = %d, want 2", p.Builds())
		}
	})

	t.Run("foreign packer", func(t *testing.T) {
		other := NewPackerDefault()
		var f Font
		_ = other.Build(hookFuncs{reserve: func(b Builder) error {
			f = b.CreateFont(FontConfig{})
			return nil
		}})
		p := smallPacker(t, 1)
		err := p.Build(hookFuncs{reserve: func(b Builder) error {
			return b.AddKerningPair(f, 'A', 'B', 1)
		}})
		if !errors.Is(err, ErrForeignFont) {
			t.Errorf("err = %v, want ErrForeignFont", err)
		}
	})
}

func TestPacker_PageDescriptor(t *testing.T) {
	p := smallPacker(t, 1)
	d := p.PageDescriptor(0)
	if d.Size.Width != 64 || d.Size.Height != 64 || d.Size.DepthOrArrayLayers != 1 {
		t.Errorf("Size = %+v", d.Size)
	}
	if d.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v", d.Format)
	}
	if d.Usage&gputypes.TextureUsageCopyDst == 0 {
		t.Error("Usage lacks CopyDst")
	}
}
