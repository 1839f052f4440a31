// Package gamma provides alpha gamma correction using lookup tables.
//
// Glyph sheets are authored for a baseline gamma of 1.4. Re-targeting an
// alpha value a to gamma g maps it through
//
//	a' = round(255 * (a/255)^(1.4/g))
//
// Tables hold the 256 precomputed results so compositing is one array
// lookup per pixel.
package gamma

import "math"

// Baseline is the gamma the glyph sheets are authored for.
const Baseline = 1.4

// Epsilon is the tolerance below which a gamma is treated as Baseline.
const Epsilon = 1e-5

// Table maps an 8-bit alpha to its corrected value.
type Table [256]uint8

// identity is returned for gammas within Epsilon of Baseline.
var identity Table

func init() {
	for i := range identity {
		identity[i] = uint8(i) //nolint:gosec // i is in [0,255]
	}
}

// IsBaseline reports whether g needs no correction.
func IsBaseline(g float32) bool {
	return math.Abs(float64(g)-Baseline) <= Epsilon
}

// NewTable computes the correction table for gamma g. A non-positive or
// non-finite g yields the identity table.
func NewTable(g float32) *Table {
	if IsBaseline(g) || !(g > 0) || math.IsInf(float64(g), 0) {
		t := identity
		return &t
	}
	exp := Baseline / float64(g)
	var t Table
	for i := range t {
		v := math.Round(255 * math.Pow(float64(i)/255, exp))
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		t[i] = uint8(v) //nolint:gosec // v is clamped to [0,255]
	}
	return &t
}

// Apply returns the corrected alpha.
func (t *Table) Apply(a uint8) uint8 {
	return t[a]
}

// ApplyAlpha corrects the alpha byte of every 4-byte pixel in pix. offset is
// the alpha byte position within a pixel.
func (t *Table) ApplyAlpha(pix []byte, offset int) {
	for i := offset; i < len(pix); i += 4 {
		pix[i] = t[pix[i]]
	}
}
