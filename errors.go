package fontatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fontatlas package.
var (
	// ErrClosed is returned by Rebuild on a closed Manager.
	ErrClosed = errors.New("fontatlas: manager closed")

	// ErrMissingTexture is returned when a glyph's sheet is not in the cache.
	ErrMissingTexture = errors.New("fontatlas: texture not loaded")
)

// StyleError reports a style that could not be composited. The style is left
// without a ready font.
type StyleError struct {
	Style Style
	Err   error
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("fontatlas: style %v: %v", e.Style, e.Err)
}

func (e *StyleError) Unwrap() error {
	return e.Err
}

// GlyphError reports a failure on a single glyph of a style.
type GlyphError struct {
	Code rune
	Err  error
}

func (e *GlyphError) Error() string {
	return fmt.Sprintf("fontatlas: glyph %U: %v", e.Code, e.Err)
}

func (e *GlyphError) Unwrap() error {
	return e.Err
}
