package marshal

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a frame extends past the end of memory.
	ErrOutOfBounds = errors.New("marshal: out of bounds")

	// ErrInvalidFrame is returned when a length prefix cannot describe a
	// valid frame, such as a text length of zero.
	ErrInvalidFrame = errors.New("marshal: invalid frame")

	// ErrAllocation is returned when the allocator cannot provide a buffer or
	// hands back one that cannot be written.
	ErrAllocation = errors.New("marshal: allocation failed")
)

// DecodeError describes a decode that ran into a malformed frame.
// Codec decode methods panic with a *DecodeError: a bad offset is a broken
// precondition of the boundary and faults the instance.
type DecodeError struct {
	Err    error
	Kind   string
	Offset uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("marshal: decode %s at offset %d: %v", e.Kind, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
