// Package fdttest builds fcsv0100 descriptor blobs for tests.
package fdttest

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/gogpu/fontatlas/fdt"
)

// Builder accumulates a descriptor and encodes it with Bytes.
type Builder struct {
	Header  fdt.Header
	Glyphs  []fdt.Glyph
	Kerning []fdt.KerningEntry
}

// New returns a builder with the given sheet size and metrics.
func New(size float32, lineHeight, ascent int32, texW, texH uint16) *Builder {
	return &Builder{Header: fdt.Header{
		Size:          size,
		LineHeight:    lineHeight,
		Ascent:        ascent,
		TextureWidth:  texW,
		TextureHeight: texH,
	}}
}

// Glyph appends a glyph record.
func (b *Builder) Glyph(g fdt.Glyph) *Builder {
	b.Glyphs = append(b.Glyphs, g)
	return b
}

// Kern appends a kerning record.
func (b *Builder) Kern(left, right rune, offset int32) *Builder {
	b.Kerning = append(b.Kerning, fdt.KerningEntry{Left: left, Right: right, Offset: offset})
	return b
}

// Bytes encodes the descriptor. Glyphs are sorted by code first.
func (b *Builder) Bytes() []byte {
	glyphs := append([]fdt.Glyph(nil), b.Glyphs...)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Code < glyphs[j].Code })

	fontOff := fdt.FileHeaderSize
	kernOff := fontOff + fdt.FontHeaderSize + len(glyphs)*fdt.GlyphRecordSize
	size := kernOff + fdt.KerningHeaderSize + len(b.Kerning)*fdt.KerningRecordSize
	out := make([]byte, size)
	le := binary.LittleEndian

	copy(out, fdt.FileSignature)
	le.PutUint32(out[8:], uint32(fontOff))  //nolint:gosec // small test offsets
	le.PutUint32(out[12:], uint32(kernOff)) //nolint:gosec // small test offsets

	h := out[fontOff:]
	copy(h, fdt.FontSignature)
	le.PutUint32(h[4:], uint32(len(glyphs)))    //nolint:gosec // small test counts
	le.PutUint32(h[8:], uint32(len(b.Kerning))) //nolint:gosec // small test counts
	le.PutUint16(h[16:], b.Header.TextureWidth)
	le.PutUint16(h[18:], b.Header.TextureHeight)
	le.PutUint32(h[20:], math.Float32bits(b.Header.Size))
	le.PutUint32(h[24:], uint32(b.Header.LineHeight)) //nolint:gosec // two's complement field
	le.PutUint32(h[28:], uint32(b.Header.Ascent))     //nolint:gosec // two's complement field

	for i, g := range glyphs {
		r := out[fontOff+fdt.FontHeaderSize+i*fdt.GlyphRecordSize:]
		le.PutUint32(r[0:], fdt.PackUTF8(g.Code))
		le.PutUint16(r[4:], g.SJIS)
		le.PutUint16(r[6:], g.TextureIndex)
		le.PutUint16(r[8:], g.OffsetX)
		le.PutUint16(r[10:], g.OffsetY)
		r[12] = g.BoundingWidth
		r[13] = g.BoundingHeight
		r[14] = byte(g.NextOffsetX)
		r[15] = byte(g.CurrentOffsetY)
	}

	k := out[kernOff:]
	copy(k, fdt.KerningSignature)
	le.PutUint32(k[4:], uint32(len(b.Kerning))) //nolint:gosec // small test counts
	for i, e := range b.Kerning {
		r := k[fdt.KerningHeaderSize+i*fdt.KerningRecordSize:]
		le.PutUint32(r[0:], fdt.PackUTF8(e.Left))
		le.PutUint32(r[4:], fdt.PackUTF8(e.Right))
		le.PutUint16(r[8:], e.LeftSJIS)
		le.PutUint16(r[10:], e.RightSJIS)
		le.PutUint32(r[12:], uint32(e.Offset)) //nolint:gosec // two's complement field
	}
	return out
}

// Sheet returns a B8G8R8A8 buffer of w×h pixels where every byte is fill.
func Sheet(w, h int, fill byte) []byte {
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = fill
	}
	return buf
}
