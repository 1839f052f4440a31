package atlas

import (
	"fmt"
	"image"
	"sort"

	"github.com/gogpu/gputypes"
)

type reservation struct {
	font    *PackedFont
	r       rune
	w, h    int
	advance float32
	offset  Offset

	placement Placement
}

// Packer is an in-process Builder. Each Build starts from scratch: the
// previous build's fonts and pages are left to their holders and never
// touched again.
//
// Packer is not safe for concurrent use; a single owner drives builds.
type Packer struct {
	cfg Config

	fonts []*PackedFont
	rects []reservation
	pages []*image.NRGBA
	util  []float64
	built bool

	builds int
}

// NewPacker creates a Packer with the given configuration.
func NewPacker(cfg Config) (*Packer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Packer{cfg: cfg}, nil
}

// NewPackerDefault creates a Packer with DefaultConfig.
func NewPackerDefault() *Packer {
	p, _ := NewPacker(DefaultConfig())
	return p
}

// Build runs one full build: h.Reserve, rasterization, h.Composite.
func (p *Packer) Build(h Hooks) error {
	p.reset()
	p.builds++

	if err := h.Reserve(p); err != nil {
		return fmt.Errorf("atlas: reserve: %w", err)
	}
	if err := p.rasterize(); err != nil {
		return err
	}
	if err := h.Composite(p); err != nil {
		return fmt.Errorf("atlas: composite: %w", err)
	}
	return nil
}

func (p *Packer) reset() {
	p.fonts = nil
	p.rects = nil
	p.pages = nil
	p.util = nil
	p.built = false
}

// CreateFont implements Builder.
func (p *Packer) CreateFont(cfg FontConfig) Font {
	f := newPackedFont(p, cfg)
	f.build = p.builds
	p.fonts = append(p.fonts, f)
	return f
}

func (p *Packer) own(f Font) (*PackedFont, error) {
	pf, ok := f.(*PackedFont)
	if !ok || pf == nil || pf.owner != p || pf.build != p.builds {
		return nil, ErrForeignFont
	}
	return pf, nil
}

// MaxRect implements Builder.
func (p *Packer) MaxRect() (w, h int) {
	return p.cfg.PageWidth - p.cfg.Padding, p.cfg.PageHeight - p.cfg.Padding
}

// ReserveRect implements Builder. A rectangle larger than MaxRect is
// rejected with a *TooLargeError.
func (p *Packer) ReserveRect(f Font, r rune, w, h int, advance float32, offset Offset) (RectID, error) {
	pf, err := p.own(f)
	if err != nil {
		return -1, err
	}
	if w < 0 || h < 0 {
		return -1, ErrInvalidRect
	}
	if maxW, maxH := p.MaxRect(); w > maxW || h > maxH {
		return -1, &TooLargeError{Width: w, Height: h}
	}
	p.rects = append(p.rects, reservation{font: pf, r: r, w: w, h: h, advance: advance, offset: offset})
	return RectID(len(p.rects) - 1), nil
}

// AddKerningPair implements Builder.
func (p *Packer) AddKerningPair(f Font, left, right rune, adjust float32) error {
	pf, err := p.own(f)
	if err != nil {
		return err
	}
	pf.kerning[kernPair{left, right}] = adjust
	return nil
}

// rasterize packs every reservation, allocates blank pages and attaches a
// glyph per reservation to its font.
func (p *Packer) rasterize() error {
	order := make([]int, len(p.rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := &p.rects[order[a]], &p.rects[order[b]]
		if ra.h != rb.h {
			return ra.h > rb.h
		}
		return ra.w > rb.w
	})

	var allocs []*shelfAllocator
	for _, idx := range order {
		r := &p.rects[idx]
		if r.w == 0 || r.h == 0 {
			r.placement = Placement{Width: r.w, Height: r.h, Codepoint: r.r}
			continue
		}
		placed := false
		for page, a := range allocs {
			if x, y, ok := a.allocate(r.w, r.h); ok {
				r.placement = Placement{Page: page, X: x, Y: y, Width: r.w, Height: r.h, Codepoint: r.r}
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		if len(allocs) >= p.cfg.MaxPages {
			return &FullError{MaxPages: p.cfg.MaxPages}
		}
		a := newShelfAllocator(p.cfg.PageWidth, p.cfg.PageHeight, p.cfg.Padding)
		x, y, ok := a.allocate(r.w, r.h)
		if !ok {
			return &TooLargeError{Width: r.w, Height: r.h}
		}
		allocs = append(allocs, a)
		r.placement = Placement{Page: len(allocs) - 1, X: x, Y: y, Width: r.w, Height: r.h, Codepoint: r.r}
	}

	p.pages = make([]*image.NRGBA, len(allocs))
	p.util = make([]float64, len(allocs))
	for i, a := range allocs {
		p.pages[i] = image.NewNRGBA(image.Rect(0, 0, p.cfg.PageWidth, p.cfg.PageHeight))
		p.util[i] = a.utilization()
	}

	pw, ph := float32(p.cfg.PageWidth), float32(p.cfg.PageHeight)
	for i := range p.rects {
		r := &p.rects[i]
		pl := r.placement
		r.font.glyphs = append(r.font.glyphs, Glyph{
			Codepoint: r.r,
			AdvanceX:  r.advance,
			X0:        r.offset.X,
			Y0:        r.offset.Y,
			X1:        r.offset.X + float32(r.w),
			Y1:        r.offset.Y + float32(r.h),
			U0:        float32(pl.X) / pw,
			V0:        float32(pl.Y) / ph,
			U1:        float32(pl.X+pl.Width) / pw,
			V1:        float32(pl.Y+pl.Height) / ph,
			Page:      pl.Page,
		})
	}
	for _, f := range p.fonts {
		f.pages = p.pages
	}

	p.built = true
	return nil
}

// PageCount implements Builder.
func (p *Packer) PageCount() int {
	return len(p.pages)
}

// Page implements Builder.
func (p *Packer) Page(index int) (*image.NRGBA, error) {
	if !p.built {
		return nil, ErrNotBuilt
	}
	if index < 0 || index >= len(p.pages) {
		return nil, fmt.Errorf("atlas: page %d out of range [0, %d)", index, len(p.pages))
	}
	return p.pages[index], nil
}

// Rect implements Builder.
func (p *Packer) Rect(id RectID) (Placement, error) {
	if !p.built {
		return Placement{}, ErrNotBuilt
	}
	if id < 0 || int(id) >= len(p.rects) {
		return Placement{}, fmt.Errorf("atlas: rect %d out of range", id)
	}
	return p.rects[id].placement, nil
}

// Fonts returns the font objects of the current build.
func (p *Packer) Fonts() []*PackedFont {
	return p.fonts
}

// Builds returns how many builds have been started.
func (p *Packer) Builds() int {
	return p.builds
}

// Utilization returns the used area fraction of a page of the current
// build.
func (p *Packer) Utilization(page int) float64 {
	if page < 0 || page >= len(p.util) {
		return 0
	}
	return p.util[page]
}

// PageDescriptor describes an atlas page for GPU upload.
type PageDescriptor struct {
	Label     string
	Size      gputypes.Extent3D
	Dimension gputypes.TextureDimension
	Format    gputypes.TextureFormat
	Usage     gputypes.TextureUsage
}

// PageDescriptor returns the upload descriptor of a page.
func (p *Packer) PageDescriptor(index int) PageDescriptor {
	return PageDescriptor{
		Label: fmt.Sprintf("fontatlas-page-%d", index),
		Size: gputypes.Extent3D{
			Width:              uint32(p.cfg.PageWidth),  //nolint:gosec // validated range
			Height:             uint32(p.cfg.PageHeight), //nolint:gosec // validated range
			DepthOrArrayLayers: 1,
		},
		Dimension: gputypes.TextureDimension2D,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Usage:     gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}
