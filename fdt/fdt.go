package fdt

import (
	"iter"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Section sizes of the fcsv0100 layout.
const (
	FileHeaderSize    = 0x20
	FontHeaderSize    = 0x20
	GlyphRecordSize   = 0x10
	KerningHeaderSize = 0x10
	KerningRecordSize = 0x10
)

// Signatures.
const (
	FileSignature    = "fcsv0100"
	FontSignature    = "fthd"
	KerningSignature = "knhd"
)

// channelBytes maps a glyph channel index to its byte offset inside a
// B8G8R8A8 pixel.
var channelBytes = [4]int{2, 1, 0, 3}

// Header holds the font-wide metrics of a descriptor.
type Header struct {
	// GlyphCount and KerningCount are the counts declared by the font header.
	GlyphCount   int32
	KerningCount int32

	// TextureWidth and TextureHeight are the dimensions of every sheet the
	// descriptor references.
	TextureWidth  uint16
	TextureHeight uint16

	// Size is the native point size the sheets were authored at.
	Size float32

	LineHeight int32
	Ascent     int32
}

// Descent returns the distance from the baseline to the bottom of the line.
func (h Header) Descent() int32 {
	return h.LineHeight - h.Ascent
}

// Glyph is one record of the glyph table.
type Glyph struct {
	// Code is the Unicode code point decoded from the packed UTF-8 column.
	Code rune

	// SJIS is the raw Shift-JIS column.
	SJIS uint16

	// TextureIndex packs the sheet number (index/4) and the channel (index%4).
	TextureIndex uint16

	// OffsetX and OffsetY locate the glyph box within its sheet.
	OffsetX uint16
	OffsetY uint16

	BoundingWidth  uint8
	BoundingHeight uint8

	// NextOffsetX is added to BoundingWidth to form the advance.
	NextOffsetX int8

	// CurrentOffsetY is the distance from the top of the line to the top of
	// the glyph box.
	CurrentOffsetY int8
}

// TextureFileIndex returns the 0-based sheet number holding the glyph.
func (g Glyph) TextureFileIndex() int {
	return int(g.TextureIndex / 4)
}

// ChannelIndex returns which of the four sheet channels holds the glyph.
func (g Glyph) ChannelIndex() int {
	return int(g.TextureIndex % 4)
}

// ChannelOffset returns the byte offset of the glyph channel inside a
// 4-byte B8G8R8A8 pixel.
func (g Glyph) ChannelOffset() int {
	return channelBytes[g.ChannelIndex()]
}

// AdvanceWidth returns the horizontal pen advance in sheet pixels.
func (g Glyph) AdvanceWidth() int {
	return int(g.BoundingWidth) + int(g.NextOffsetX)
}

// Displayable reports whether the glyph code lies in [32, 0xFFFF).
func (g Glyph) Displayable() bool {
	return g.Code >= 32 && g.Code < 0xFFFF
}

// SJISRune decodes the Shift-JIS column. It returns false when the column is
// empty or does not decode to a single character.
func (g Glyph) SJISRune() (rune, bool) {
	return decodeSJIS(g.SJIS)
}

// KerningEntry is one record of the kerning table.
type KerningEntry struct {
	Left  rune
	Right rune

	LeftSJIS  uint16
	RightSJIS uint16

	// Offset is the horizontal adjustment applied between Left and Right,
	// in sheet pixels.
	Offset int32
}

type kernKey struct {
	left, right rune
}

// Descriptor is a decoded fcsv0100 file. It is immutable after Parse and
// safe for concurrent reads.
type Descriptor struct {
	Header Header

	// Glyphs is sorted by Code with unique codes.
	Glyphs []Glyph

	// Kerning keeps file order.
	Kerning []KerningEntry

	kern map[kernKey]int32
}

// Glyph looks up the record for r.
func (d *Descriptor) Glyph(r rune) (Glyph, bool) {
	i := sort.Search(len(d.Glyphs), func(i int) bool { return d.Glyphs[i].Code >= r })
	if i < len(d.Glyphs) && d.Glyphs[i].Code == r {
		return d.Glyphs[i], true
	}
	return Glyph{}, false
}

// Kern returns the adjustment between left and right.
func (d *Descriptor) Kern(left, right rune) (int32, bool) {
	v, ok := d.kern[kernKey{left, right}]
	return v, ok
}

// DisplayableGlyphs yields every glyph whose code lies in [32, 0xFFFF), in
// code order.
func (d *Descriptor) DisplayableGlyphs() iter.Seq[Glyph] {
	return func(yield func(Glyph) bool) {
		for _, g := range d.Glyphs {
			if !g.Displayable() {
				continue
			}
			if !yield(g) {
				return
			}
		}
	}
}

// TextureFileIndices returns the distinct 0-based sheet numbers referenced
// by the glyph table, in ascending order.
func (d *Descriptor) TextureFileIndices() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, g := range d.Glyphs {
		i := g.TextureFileIndex()
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func decodeSJIS(code uint16) (rune, bool) {
	if code == 0 {
		return 0, false
	}
	var src []byte
	if code < 0x100 {
		src = []byte{byte(code)}
	} else {
		src = []byte{byte(code >> 8), byte(code)}
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(src)
	if err != nil {
		return 0, false
	}
	rs := []rune(string(out))
	if len(rs) != 1 || rs[0] == utf8.RuneError {
		return 0, false
	}
	return rs[0], true
}
