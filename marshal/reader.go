package marshal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Reader decodes frames from memory starting at a fixed offset.
// Every method checks bounds and returns an error rather than faulting.
type Reader struct {
	mem    Memory
	offset uint32
}

// NewReader returns a reader for the frame at offset.
func NewReader(mem Memory, offset uint32) *Reader {
	return &Reader{mem: mem, offset: offset}
}

// Bytes decodes a byte buffer frame. The result is a copy.
func (r *Reader) Bytes() ([]byte, error) {
	data, _, err := r.bytesAt(r.offset)
	return data, err
}

// Text decodes a text frame, replacing invalid UTF-8 sequences.
func (r *Reader) Text() (string, error) {
	s, _, err := r.textAt(r.offset)
	return s, err
}

// TextList decodes a text list frame.
func (r *Reader) TextList() ([]string, error) {
	count, ok := r.mem.ReadUint32Le(r.offset)
	if !ok {
		return nil, fmt.Errorf("%w: list count at %d", ErrOutOfBounds, r.offset)
	}

	// count comes from memory; cap the preallocation.
	items := make([]string, 0, min(count, 1024))
	pos := uint64(r.offset) + LengthSize
	for i := range count {
		if pos > 0xffffffff {
			return nil, fmt.Errorf("%w: list element %d", ErrOutOfBounds, i)
		}
		s, next, err := r.textAt(uint32(pos))
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		items = append(items, s)
		pos = next
	}
	return items, nil
}

func (r *Reader) bytesAt(offset uint32) ([]byte, uint64, error) {
	n, ok := r.mem.ReadUint32Le(offset)
	if !ok {
		return nil, 0, fmt.Errorf("%w: length at %d", ErrOutOfBounds, offset)
	}
	start := uint64(offset) + LengthSize
	if start+uint64(n) > 0xffffffff {
		return nil, 0, fmt.Errorf("%w: %d bytes at %d", ErrOutOfBounds, n, start)
	}
	view, ok := r.mem.Read(uint32(start), n)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d bytes at %d", ErrOutOfBounds, n, start)
	}
	data := make([]byte, n)
	copy(data, view)
	return data, start + uint64(n), nil
}

func (r *Reader) textAt(offset uint32) (string, uint64, error) {
	n, ok := r.mem.ReadUint32Le(offset)
	if !ok {
		return "", 0, fmt.Errorf("%w: text length at %d", ErrOutOfBounds, offset)
	}
	if n == 0 {
		return "", 0, fmt.Errorf("%w: text length 0 at %d", ErrInvalidFrame, offset)
	}
	start := uint64(offset) + LengthSize
	if start+uint64(n) > 0xffffffff {
		return "", 0, fmt.Errorf("%w: text of %d bytes at %d", ErrOutOfBounds, n, start)
	}
	// The terminator is part of the declared length but its value is not
	// checked.
	view, ok := r.mem.Read(uint32(start), n)
	if !ok {
		return "", 0, fmt.Errorf("%w: text of %d bytes at %d", ErrOutOfBounds, n, start)
	}
	return lossyString(view[:n-1]), start + uint64(n), nil
}

// lossyString converts b to a string, replacing ill-formed sequences with
// U+FFFD.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
