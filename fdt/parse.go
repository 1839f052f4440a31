package fdt

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

var le = binary.LittleEndian

// Parse decodes a descriptor. The data slice is not retained.
func Parse(data []byte) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if len(data) < FileHeaderSize {
		return nil, &FormatError{Offset: 0, Section: "file header", Reason: "truncated"}
	}
	if string(data[:8]) != FileSignature {
		return nil, &FormatError{Offset: 0, Section: "file header", Reason: fmt.Sprintf("bad signature %q", data[:8])}
	}

	fontOff := int(int32(le.Uint32(data[8:])))  //nolint:gosec // sign is checked below
	kernOff := int(int32(le.Uint32(data[12:]))) //nolint:gosec // sign is checked below

	d := &Descriptor{}
	if err := parseFontHeader(data, fontOff, &d.Header); err != nil {
		return nil, err
	}

	glyphs, err := parseGlyphs(data, fontOff+FontHeaderSize, int(d.Header.GlyphCount))
	if err != nil {
		return nil, err
	}
	d.Glyphs = glyphs

	kerning, err := parseKerning(data, kernOff)
	if err != nil {
		return nil, err
	}
	d.Kerning = kerning
	d.kern = make(map[kernKey]int32, len(kerning))
	for _, k := range kerning {
		d.kern[kernKey{k.Left, k.Right}] = k.Offset
	}

	return d, nil
}

func parseFontHeader(data []byte, off int, h *Header) error {
	if off < FileHeaderSize || off > len(data)-FontHeaderSize {
		return &FormatError{Offset: off, Section: "font header", Reason: "offset out of range"}
	}
	b := data[off : off+FontHeaderSize]
	if string(b[:4]) != FontSignature {
		return &FormatError{Offset: off, Section: "font header", Reason: fmt.Sprintf("bad signature %q", b[:4])}
	}

	h.GlyphCount = int32(le.Uint32(b[4:]))   //nolint:gosec // two's complement field
	h.KerningCount = int32(le.Uint32(b[8:])) //nolint:gosec // two's complement field
	// b[12:16] is padding.
	h.TextureWidth = le.Uint16(b[16:])
	h.TextureHeight = le.Uint16(b[18:])
	h.Size = math.Float32frombits(le.Uint32(b[20:]))
	h.LineHeight = int32(le.Uint32(b[24:])) //nolint:gosec // two's complement field
	h.Ascent = int32(le.Uint32(b[28:]))     //nolint:gosec // two's complement field

	switch {
	case h.GlyphCount < 0:
		return &FormatError{Offset: off + 4, Section: "font header", Reason: "negative glyph count"}
	case h.KerningCount < 0:
		return &FormatError{Offset: off + 8, Section: "font header", Reason: "negative kerning count"}
	case !(h.Size > 0) || math.IsInf(float64(h.Size), 0):
		return &FormatError{Offset: off + 20, Section: "font header", Reason: fmt.Sprintf("invalid point size %v", h.Size)}
	}
	return nil
}

func parseGlyphs(data []byte, off, count int) ([]Glyph, error) {
	if count > (len(data)-off)/GlyphRecordSize {
		return nil, &FormatError{Offset: off, Section: "glyph table", Reason: fmt.Sprintf("%d records do not fit", count)}
	}

	glyphs := make([]Glyph, count)
	for i := range glyphs {
		at := off + i*GlyphRecordSize
		b := data[at : at+GlyphRecordSize]
		code, ok := UnpackUTF8(le.Uint32(b[0:]))
		if !ok {
			return nil, &FormatError{Offset: at, Section: "glyph table", Reason: fmt.Sprintf("invalid packed UTF-8 %#08x", le.Uint32(b[0:]))}
		}
		glyphs[i] = Glyph{
			Code:           code,
			SJIS:           le.Uint16(b[4:]),
			TextureIndex:   le.Uint16(b[6:]),
			OffsetX:        le.Uint16(b[8:]),
			OffsetY:        le.Uint16(b[10:]),
			BoundingWidth:  b[12],
			BoundingHeight: b[13],
			NextOffsetX:    int8(b[14]), //nolint:gosec // signed byte field
			CurrentOffsetY: int8(b[15]), //nolint:gosec // signed byte field
		}
		if i > 0 && glyphs[i-1].Code >= code {
			return nil, &FormatError{Offset: at, Section: "glyph table", Reason: fmt.Sprintf("code %U out of order or duplicated", code)}
		}
	}
	return glyphs, nil
}

func parseKerning(data []byte, off int) ([]KerningEntry, error) {
	if off == 0 {
		return nil, nil
	}
	if off < FileHeaderSize || off > len(data)-KerningHeaderSize {
		return nil, &FormatError{Offset: off, Section: "kerning header", Reason: "offset out of range"}
	}
	b := data[off : off+KerningHeaderSize]
	if string(b[:4]) != KerningSignature {
		return nil, &FormatError{Offset: off, Section: "kerning header", Reason: fmt.Sprintf("bad signature %q", b[:4])}
	}
	count := int(int32(le.Uint32(b[4:]))) //nolint:gosec // sign is checked below
	start := off + KerningHeaderSize
	if count < 0 || count > (len(data)-start)/KerningRecordSize {
		return nil, &FormatError{Offset: off + 4, Section: "kerning table", Reason: fmt.Sprintf("%d records do not fit", count)}
	}

	entries := make([]KerningEntry, count)
	for i := range entries {
		at := start + i*KerningRecordSize
		r := data[at : at+KerningRecordSize]
		left, okl := UnpackUTF8(le.Uint32(r[0:]))
		right, okr := UnpackUTF8(le.Uint32(r[4:]))
		if !okl || !okr {
			return nil, &FormatError{Offset: at, Section: "kerning table", Reason: "invalid packed UTF-8"}
		}
		entries[i] = KerningEntry{
			Left:      left,
			Right:     right,
			LeftSJIS:  le.Uint16(r[8:]),
			RightSJIS: le.Uint16(r[10:]),
			Offset:    int32(le.Uint32(r[12:])), //nolint:gosec // two's complement field
		}
	}
	return entries, nil
}

// UnpackUTF8 decodes a code point stored as its UTF-8 bytes packed
// big-endian into a uint32 ('A' is 0x41, U+3042 is 0xE38182).
func UnpackUTF8(v uint32) (rune, bool) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b := buf[:]
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	r, n := utf8.DecodeRune(b)
	if n != len(b) || (r == utf8.RuneError && n <= 1) {
		return 0, false
	}
	return r, true
}

// PackUTF8 is the inverse of UnpackUTF8.
func PackUTF8(r rune) uint32 {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	var v uint32
	for _, c := range buf[:n] {
		v = v<<8 | uint32(c)
	}
	return v
}
