package fdt

import (
	"errors"
	"fmt"
)

// ErrEmptyData is returned when the descriptor data is empty.
var ErrEmptyData = errors.New("fdt: empty descriptor data")

// FormatError reports a descriptor whose byte layout does not match the
// fixed fcsv0100 layout.
type FormatError struct {
	// Offset is the byte offset where decoding failed.
	Offset int

	// Section names the part of the file being decoded.
	Section string

	// Reason describes the mismatch.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fdt: malformed %s at offset %#x: %s", e.Section, e.Offset, e.Reason)
}
