// Package fdt decodes the fcsv0100 font-descriptor format used by the game
// font sheets.
//
// A descriptor is a read-only, little-endian binary table with four parts:
//
//	file header      0x20 bytes  "fcsv0100", table offsets
//	font header      0x20 bytes  "fthd", counts, sheet size, point size, metrics
//	glyph records    0x10 bytes each, sorted by code point
//	kerning header   0x10 bytes  "knhd", count, followed by 0x10-byte records
//
// Glyph bitmaps are not stored in the descriptor. Each glyph names a texture
// sheet, one of the four 8-bit channels of that sheet, and a box inside it.
//
// Parse never returns a partially decoded Descriptor: any truncation or
// signature mismatch is reported as a *FormatError.
package fdt
