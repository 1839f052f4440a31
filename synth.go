package fontatlas

import (
	"image"
	"math"

	"github.com/gogpu/fontatlas/fdt"
	"github.com/gogpu/fontatlas/internal/gamma"
	"github.com/gogpu/fontatlas/resource"
)

// glyphBitmap reads one channel of a glyph box inside a B8G8R8A8 sheet.
type glyphBitmap struct {
	pix     []byte
	stride  int
	x0, y0  int
	w, h    int
	channel int
}

func newGlyphBitmap(tex *resource.Texture, g fdt.Glyph) glyphBitmap {
	return glyphBitmap{
		pix:     tex.Pix,
		stride:  tex.Stride(),
		x0:      int(g.OffsetX),
		y0:      int(g.OffsetY),
		w:       int(g.BoundingWidth),
		h:       int(g.BoundingHeight),
		channel: g.ChannelOffset(),
	}
}

// at returns the alpha at (x, y) inside the box. Samples outside the box
// are 0.
func (b glyphBitmap) at(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return 0
	}
	return b.pix[(b.y0+y)*b.stride+(b.x0+x)*4+b.channel]
}

// skewShift returns the horizontal shift of a glyph row whose distance from
// the top of the line is ty.
func skewShift(skew float32, lineHeight int32, ty int) float64 {
	if skew == 0 || lineHeight <= 0 {
		return 0
	}
	lh := float64(lineHeight)
	if skew > 0 {
		return float64(skew) * (lh - float64(ty)) / lh
	}
	return -float64(skew) * float64(ty) / lh
}

// allowance returns the extra width a glyph needs for synthetic bold and
// skew. It is 0 for a plain style.
func allowance(weight, skew float32, lineHeight int32, g fdt.Glyph) int {
	if weight <= 0 && skew == 0 {
		return 0
	}
	var maxShift float64
	for y := 0; y < int(g.BoundingHeight); y++ {
		maxShift = max(maxShift, skewShift(skew, lineHeight, int(g.CurrentOffsetY)+y))
	}
	return int(math.Ceil(float64(max(weight, 0)))) + int(math.Ceil(maxShift))
}

// copyAlpha writes the glyph alpha into dst as white.
func copyAlpha(dst *image.NRGBA, src glyphBitmap) {
	r := dst.Bounds()
	w := min(r.Dx(), src.w)
	h := min(r.Dy(), src.h)
	for y := 0; y < h; y++ {
		off := dst.PixOffset(r.Min.X, r.Min.Y+y)
		row := dst.Pix[off : off+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2] = 0xFF, 0xFF, 0xFF
			p[3] = src.at(x, y)
		}
	}
}

// clearWhite sets every pixel of dst to white with zero alpha.
func clearWhite(dst *image.NRGBA) {
	r := dst.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		row := dst.Pix[off : off+r.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = 0xFF, 0xFF, 0xFF, 0
		}
	}
}

// synthesize renders a bold and skewed glyph into dst. Bold steps and
// skewed samples merge with max so no pass darkens a pixel another pass
// wrote. offsetY is the distance from the top of the line to the top of the
// glyph box.
func synthesize(dst *image.NRGBA, src glyphBitmap, weight, skew float32, lineHeight int32, offsetY int) {
	r := dst.Bounds()
	clearWhite(dst)

	wt := float64(max(weight, 0))
	steps := int(math.Ceil(wt + 1))
	h := min(r.Dy(), src.h)
	for b := 0; b < steps; b++ {
		intensity := math.Min(1, wt+1-float64(b))
		for y := 0; y < h; y++ {
			xDelta := skewShift(skew, lineHeight, offsetY+y)
			off := dst.PixOffset(r.Min.X, r.Min.Y+y)
			for x := 0; x < r.Dx(); x++ {
				s := float64(x-b) - xDelta
				i := math.Floor(s)
				f := s - i
				ii := int(i)
				v := float64(src.at(ii, y))*(1-f) + float64(src.at(ii+1, y))*f
				a := uint8(math.Min(255, math.Round(v*intensity)))
				if p := off + x*4 + 3; a > dst.Pix[p] {
					dst.Pix[p] = a
				}
			}
		}
	}
}

// applyGamma remaps the alpha of every pixel in dst.
func applyGamma(dst *image.NRGBA, t *gamma.Table) {
	r := dst.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := dst.PixOffset(r.Min.X, y)
		t.ApplyAlpha(dst.Pix[off:off+r.Dx()*4], 3)
	}
}
