// Package texfile decodes the first surface of a .tex texture container
// into a B8G8R8A8 pixel buffer.
//
// Only the uncompressed formats used by font sheets are supported.
package texfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of the fixed .tex header.
const HeaderSize = 80

// Format is the surface pixel format code stored in the header.
type Format uint32

// Supported formats.
const (
	FormatB4G4R4A4 Format = 0x1440
	FormatB5G5R5A1 Format = 0x1441
	FormatB8G8R8A8 Format = 0x1450
)

func (f Format) String() string {
	switch f {
	case FormatB4G4R4A4:
		return "B4G4R4A4"
	case FormatB5G5R5A1:
		return "B5G5R5A1"
	case FormatB8G8R8A8:
		return "B8G8R8A8"
	default:
		return fmt.Sprintf("Format(%#x)", uint32(f))
	}
}

// ErrUnsupportedFormat is returned for surface formats other than the
// supported uncompressed ones.
var ErrUnsupportedFormat = errors.New("texfile: unsupported surface format")

// FormatError reports a malformed container.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "texfile: malformed texture: " + e.Reason
}

// Header is the decoded fixed header.
type Header struct {
	Attribute uint32
	Format    Format
	Width     uint16
	Height    uint16
	Depth     uint16
	MipLevels uint8
	ArraySize uint8

	// SurfaceOffset is the byte offset of the first (largest) surface.
	SurfaceOffset uint32
}

// Image is a decoded surface. Pix holds Width*Height B8G8R8A8 pixels.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// DecodeHeader decodes the fixed header only.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, &FormatError{Reason: "truncated header"}
	}
	le := binary.LittleEndian
	h := Header{
		Attribute:     le.Uint32(data[0:]),
		Format:        Format(le.Uint32(data[4:])),
		Width:         le.Uint16(data[8:]),
		Height:        le.Uint16(data[10:]),
		Depth:         le.Uint16(data[12:]),
		MipLevels:     data[14],
		ArraySize:     data[15],
		SurfaceOffset: le.Uint32(data[28:]),
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, &FormatError{Reason: "zero dimension"}
	}
	return h, nil
}

// Decode decodes the first surface of data.
func Decode(data []byte) (*Image, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	bpp := 0
	switch h.Format {
	case FormatB4G4R4A4, FormatB5G5R5A1:
		bpp = 2
	case FormatB8G8R8A8:
		bpp = 4
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, h.Format)
	}

	w, hgt := int(h.Width), int(h.Height)
	start := int(h.SurfaceOffset)
	if start < HeaderSize {
		start = HeaderSize
	}
	need := w * hgt * bpp
	if start > len(data) || len(data)-start < need {
		return nil, &FormatError{Reason: fmt.Sprintf("surface needs %d bytes at %#x, have %d", need, start, len(data)-start)}
	}
	src := data[start : start+need]

	img := &Image{Width: w, Height: hgt, Pix: make([]byte, w*hgt*4)}
	switch h.Format {
	case FormatB8G8R8A8:
		copy(img.Pix, src)
	case FormatB4G4R4A4:
		for i := 0; i < w*hgt; i++ {
			v := binary.LittleEndian.Uint16(src[i*2:])
			img.Pix[i*4+0] = byte(v&0xF) * 17
			img.Pix[i*4+1] = byte(v>>4&0xF) * 17
			img.Pix[i*4+2] = byte(v>>8&0xF) * 17
			img.Pix[i*4+3] = byte(v>>12&0xF) * 17
		}
	case FormatB5G5R5A1:
		for i := 0; i < w*hgt; i++ {
			v := binary.LittleEndian.Uint16(src[i*2:])
			img.Pix[i*4+0] = expand5(v & 0x1F)
			img.Pix[i*4+1] = expand5(v >> 5 & 0x1F)
			img.Pix[i*4+2] = expand5(v >> 10 & 0x1F)
			if v&0x8000 != 0 {
				img.Pix[i*4+3] = 0xFF
			}
		}
	}
	return img, nil
}

func expand5(v uint16) byte {
	return byte(v<<3 | v>>2)
}
