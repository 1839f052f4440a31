package atlas

import (
	"errors"
	"fmt"
)

// Config holds Packer configuration.
type Config struct {
	// PageWidth and PageHeight are the dimensions of every atlas page.
	// Default: 2048x2048
	PageWidth  int
	PageHeight int

	// Padding between packed rectangles to prevent bleeding.
	// Default: 1
	Padding int

	// MaxPages limits the number of pages a build may open.
	// Default: 8
	MaxPages int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageWidth:  2048,
		PageHeight: 2048,
		Padding:    1,
		MaxPages:   8,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PageWidth < 64 || c.PageWidth > 16384 {
		return &ConfigError{Field: "PageWidth", Reason: "must be in [64, 16384]"}
	}
	if c.PageHeight < 64 || c.PageHeight > 16384 {
		return &ConfigError{Field: "PageHeight", Reason: "must be in [64, 16384]"}
	}
	if c.Padding < 0 || c.Padding > 16 {
		return &ConfigError{Field: "Padding", Reason: "must be in [0, 16]"}
	}
	if c.MaxPages < 1 || c.MaxPages > 256 {
		return &ConfigError{Field: "MaxPages", Reason: "must be in [1, 256]"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

// Sentinel errors for the atlas package.
var (
	// ErrForeignFont is returned when a Font not created by the current
	// build of this builder is passed back to it.
	ErrForeignFont = errors.New("atlas: font was not created by this builder")

	// ErrNotBuilt is returned when pages or placements are queried before
	// the rasterization step of the current build.
	ErrNotBuilt = errors.New("atlas: pages not rasterized yet")

	// ErrGlyphNotFound is returned by SetFallback for a code point the font
	// does not hold.
	ErrGlyphNotFound = errors.New("atlas: glyph not found")

	// ErrInvalidRect is returned for a reservation with a negative size.
	ErrInvalidRect = errors.New("atlas: invalid rectangle size")
)

// FullError is returned when the reserved rectangles do not fit in
// MaxPages pages.
type FullError struct {
	MaxPages int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("atlas: all %d pages are full", e.MaxPages)
}

// TooLargeError is returned for a rectangle larger than a page.
type TooLargeError struct {
	Width, Height int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("atlas: %dx%d rectangle does not fit on a page", e.Width, e.Height)
}
