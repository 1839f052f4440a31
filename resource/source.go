package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG sheets
	_ "image/png"  // register PNG sheets
	"io/fs"
	"path"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // register BMP sheets
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF sheets
	_ "golang.org/x/image/webp" // register WebP sheets

	"github.com/gogpu/fontatlas/texfile"
)

// Texture is a decoded sheet. Pix holds Width*Height B8G8R8A8 pixels and is
// never modified after loading.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pix    []byte
}

// Stride returns the number of bytes per row.
func (t *Texture) Stride() int {
	return t.Width * 4
}

// Source supplies raw descriptor bytes and decoded sheet pixels.
// Implementations must be safe for concurrent use.
type Source interface {
	// Bytes returns the raw contents of the file at path.
	Bytes(ctx context.Context, path string) ([]byte, error)

	// ImagePixels returns the decoded B8G8R8A8 pixels of the image at path.
	ImagePixels(ctx context.Context, path string) (*Texture, error)
}

// FSSource reads files from an fs.FS. Sheets ending in .tex are decoded
// with texfile; anything else goes through image.Decode with PNG, JPEG, BMP,
// TIFF and WebP registered.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource returns a Source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Bytes implements Source.
func (s *FSSource) Bytes(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// ImagePixels implements Source.
func (s *FSSource) ImagePixels(ctx context.Context, name string) (*Texture, error) {
	data, err := s.Bytes(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeTexture(name, data)
}

// DecodeTexture decodes sheet data, choosing the decoder by the extension
// of name.
func DecodeTexture(name string, data []byte) (*Texture, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if strings.EqualFold(path.Ext(name), ".tex") {
		img, err := texfile.Decode(data)
		if err != nil {
			return nil, err
		}
		return &Texture{Name: name, Width: img.Width, Height: img.Height, Pix: img.Pix}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("resource: decode %s: %w", name, err)
	}
	return fromImage(name, src), nil
}

// fromImage converts any image to a B8G8R8A8 texture without
// premultiplying, so authored channel values survive unchanged.
func fromImage(name string, src image.Image) *Texture {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != b.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	pix := make([]byte, len(nrgba.Pix))
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = nrgba.Pix[i+2]
		pix[i+1] = nrgba.Pix[i+1]
		pix[i+2] = nrgba.Pix[i+0]
		pix[i+3] = nrgba.Pix[i+3]
	}
	return &Texture{Name: name, Width: b.Dx(), Height: b.Dy(), Pix: pix}
}

// MapSource is an in-memory Source.
type MapSource struct {
	mu       sync.RWMutex
	files    map[string][]byte
	textures map[string]*Texture
}

// NewMapSource returns an empty MapSource.
func NewMapSource() *MapSource {
	return &MapSource{
		files:    make(map[string][]byte),
		textures: make(map[string]*Texture),
	}
}

// SetBytes stores a raw file.
func (s *MapSource) SetBytes(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
}

// SetTexture stores a decoded B8G8R8A8 sheet.
func (s *MapSource) SetTexture(name string, w, h int, pix []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textures[name] = &Texture{Name: name, Width: w, Height: h, Pix: pix}
}

// Bytes implements Source.
func (s *MapSource) Bytes(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// ImagePixels implements Source. Stored textures win over raw files, which
// are decoded with DecodeTexture.
func (s *MapSource) ImagePixels(ctx context.Context, name string) (*Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	tex, ok := s.textures[name]
	data, raw := s.files[name]
	s.mu.RUnlock()
	if ok {
		return tex, nil
	}
	if !raw {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return DecodeTexture(name, data)
}
