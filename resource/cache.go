// Package resource loads, once and up front, every font descriptor and
// texture sheet the compositor may need.
//
// A Cache is immutable after Load returns and safe for concurrent reads.
// Loading is all-or-nothing: a missing or malformed descriptor, or a missing
// sheet referenced by any glyph, fails the whole Load.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/fontatlas/family"
	"github.com/gogpu/fontatlas/fdt"
	"github.com/gogpu/fontatlas/internal/parallel"
)

// Sentinel errors for the resource package.
var (
	// ErrNotFound is returned by a Source for a path it does not hold.
	ErrNotFound = errors.New("resource: not found")

	// ErrEmptyData is returned when a sheet file is empty.
	ErrEmptyData = errors.New("resource: empty data")

	// ErrNoFamilies is returned by Load for an empty family table.
	ErrNoFamilies = errors.New("resource: no families")

	// ErrNoGlyphs is returned by Load for a descriptor without glyphs.
	ErrNoGlyphs = errors.New("resource: descriptor has no glyphs")
)

// LoadError is a fatal load failure of one file.
type LoadError struct {
	Family family.Family
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("resource: load %s for %v: %v", e.Path, e.Family, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// GlyphBoundsError reports a glyph whose box does not fit inside its sheet.
type GlyphBoundsError struct {
	Code    rune
	Texture string
}

func (e *GlyphBoundsError) Error() string {
	return fmt.Sprintf("resource: glyph %U lies outside %s", e.Code, e.Texture)
}

// Cache holds the descriptors and sheets of a family table.
type Cache struct {
	table       family.Table
	descriptors map[family.Family]*fdt.Descriptor
	textures    map[string]*Texture
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	workers int
}

// WithWorkers sets the number of concurrent fetches. Zero or less uses
// GOMAXPROCS.
func WithWorkers(n int) LoadOption {
	return func(o *loadOptions) {
		o.workers = n
	}
}

// Load fetches every descriptor named by table and every distinct sheet its
// glyphs reference. Fetches run concurrently; Load returns only after all of
// them have finished.
func Load(ctx context.Context, table family.Table, src Source, opts ...LoadOption) (*Cache, error) {
	if len(table) == 0 {
		return nil, ErrNoFamilies
	}
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	c := &Cache{
		table:       make(family.Table, len(table)),
		descriptors: make(map[family.Family]*fdt.Descriptor, len(table)),
		textures:    make(map[string]*Texture),
	}
	for f, files := range table {
		c.table[f] = files
	}

	if err := c.loadDescriptors(ctx, pool, src); err != nil {
		return nil, err
	}
	if err := c.loadTextures(ctx, pool, src); err != nil {
		return nil, err
	}
	if err := c.checkBounds(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) loadDescriptors(ctx context.Context, pool *parallel.WorkerPool, src Source) error {
	var mu sync.Mutex
	families := c.table.Families()
	tasks := make([]parallel.Task, len(families))
	for i, f := range families {
		files := c.table[f]
		tasks[i] = func(ctx context.Context) error {
			data, err := src.Bytes(ctx, files.Descriptor)
			if err != nil {
				return &LoadError{Family: f, Path: files.Descriptor, Err: err}
			}
			d, err := fdt.Parse(data)
			if err != nil {
				return &LoadError{Family: f, Path: files.Descriptor, Err: err}
			}
			if len(d.Glyphs) == 0 {
				return &LoadError{Family: f, Path: files.Descriptor, Err: ErrNoGlyphs}
			}
			mu.Lock()
			c.descriptors[f] = d
			mu.Unlock()
			return nil
		}
	}
	return pool.Run(ctx, tasks)
}

// textureRef is a distinct (family, sheet name) pair; the family is kept
// for error reporting only.
type textureRef struct {
	family family.Family
	name   string
}

// textureRefs returns one ref per distinct sheet name, in name order.
func (c *Cache) textureRefs() []textureRef {
	byName := make(map[string]family.Family)
	for _, f := range c.table.Families() {
		files := c.table[f]
		for _, idx := range c.descriptors[f].TextureFileIndices() {
			name := files.TexturePath(idx)
			if _, ok := byName[name]; !ok {
				byName[name] = f
			}
		}
	}
	refs := make([]textureRef, 0, len(byName))
	for name, f := range byName {
		refs = append(refs, textureRef{family: f, name: name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].name < refs[j].name })
	return refs
}

func (c *Cache) loadTextures(ctx context.Context, pool *parallel.WorkerPool, src Source) error {
	var mu sync.Mutex
	refs := c.textureRefs()
	tasks := make([]parallel.Task, len(refs))
	for i, ref := range refs {
		tasks[i] = func(ctx context.Context) error {
			tex, err := src.ImagePixels(ctx, ref.name)
			if err != nil {
				return &LoadError{Family: ref.family, Path: ref.name, Err: err}
			}
			if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pix) < tex.Width*tex.Height*4 {
				return &LoadError{Family: ref.family, Path: ref.name, Err: ErrEmptyData}
			}
			if tex.Name == "" {
				tex.Name = ref.name
			}
			mu.Lock()
			c.textures[ref.name] = tex
			mu.Unlock()
			return nil
		}
	}
	return pool.Run(ctx, tasks)
}

func (c *Cache) checkBounds() error {
	for f, d := range c.descriptors {
		files := c.table[f]
		for _, g := range d.Glyphs {
			name := files.TexturePath(g.TextureFileIndex())
			tex := c.textures[name]
			if int(g.OffsetX)+int(g.BoundingWidth) > tex.Width || int(g.OffsetY)+int(g.BoundingHeight) > tex.Height {
				return &LoadError{Family: f, Path: name, Err: &GlyphBoundsError{Code: g.Code, Texture: name}}
			}
		}
	}
	return nil
}

// Descriptor returns the descriptor of f.
func (c *Cache) Descriptor(f family.Family) (*fdt.Descriptor, bool) {
	d, ok := c.descriptors[f]
	return d, ok
}

// Texture returns the sheet with the given formatted name.
func (c *Cache) Texture(name string) (*Texture, bool) {
	t, ok := c.textures[name]
	return t, ok
}

// GlyphTexture returns the sheet holding g for family f.
func (c *Cache) GlyphTexture(f family.Family, g fdt.Glyph) (*Texture, bool) {
	files, ok := c.table[f]
	if !ok {
		return nil, false
	}
	return c.Texture(files.TexturePath(g.TextureFileIndex()))
}

// Families returns the loaded families in ascending order.
func (c *Cache) Families() []family.Family {
	return c.table.Families()
}

// TextureCount returns the number of distinct sheets loaded.
func (c *Cache) TextureCount() int {
	return len(c.textures)
}
