package fontatlas

import (
	"fmt"
	"math"

	"github.com/gogpu/fontatlas/family"
)

// Style is a requested rendering of a family. Styles compare by value and
// key the Manager's use counts.
type Style struct {
	Family family.Family

	// Size is the target point size. Zero or less means the family's native
	// size.
	Size float32

	// Weight is the synthetic boldness in pixels. Negative values count as 0.
	Weight float32

	// Skew is the signed synthetic slant in pixels at the far end of the
	// line. Positive skew leans right at the top of the line, negative skew
	// toward the baseline.
	Skew float32
}

func (s Style) String() string {
	return fmt.Sprintf("%v@%gpt(w=%g,s=%g)", s.Family, s.Size, s.Weight, s.Skew)
}

// Canonical returns s with every field the Manager treats as a default
// replaced by that default: NaN, infinite or non-positive Size and Weight
// become 0, and a NaN or infinite Skew becomes 0.
func (s Style) Canonical() Style {
	if !finite(s.Size) || s.Size <= 0 {
		s.Size = 0
	}
	if !finite(s.Weight) || s.Weight <= 0 {
		s.Weight = 0
	}
	if !finite(s.Skew) || s.Skew == 0 {
		s.Skew = 0
	}
	return s
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Synthetic reports whether the style needs synthesized glyphs.
func (s Style) Synthetic() bool {
	return s.weight() > 0 || s.Skew != 0
}

func (s Style) weight() float32 {
	if s.Weight < 0 {
		return 0
	}
	return s.Weight
}

// scale returns the factor from native sheet pixels to the target size.
func (s Style) scale(native float32) float32 {
	if s.Size <= 0 || native <= 0 {
		return 1
	}
	return s.Size / native
}

func styleLess(a, b Style) bool {
	switch {
	case a.Family != b.Family:
		return a.Family < b.Family
	case a.Size != b.Size:
		return a.Size < b.Size
	case a.Weight != b.Weight:
		return a.Weight < b.Weight
	default:
		return a.Skew < b.Skew
	}
}
