package carve

import "errors"

var (
	// ErrAllocation reports that a per-iteration buffer could not be obtained.
	ErrAllocation = errors.New("carve: allocation failed")
	// ErrInvalidTarget reports a target width outside [1, width].
	ErrInvalidTarget = errors.New("carve: invalid target width")
	// ErrInvalidBuffer reports dimensions that do not match the buffer.
	ErrInvalidBuffer = errors.New("carve: invalid buffer")
)
