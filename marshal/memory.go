package marshal

import (
	"encoding/binary"
)

// Memory is the linear memory shared by guest and host.
//
// The method set matches wazero's api.Memory, so a host can hand a module's
// memory to the codec directly. Read may return a view into the memory;
// the codec copies before returning values to callers.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
}

// Allocator hands out buffers in the guest's linear memory.
// Whoever allocates a buffer owns it until it calls Release.
type Allocator interface {
	Allocate(size uint32) (uint32, error)
	Release(offset uint32)
}

// Buffer is an allocated region of linear memory holding one frame.
type Buffer struct {
	Offset uint32
	Length uint32
}

// IsZero reports whether b refers to no memory at all.
func (b Buffer) IsZero() bool {
	return b.Offset == 0 && b.Length == 0
}

// Bytes is a Memory backed by a plain slice; offset 0 is the first byte.
// It is handy for decoding frames that never lived in linear memory.
type Bytes []byte

// Read implements Memory.
func (b Bytes) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(b)) {
		return nil, false
	}
	return b[offset:end], true
}

// Write implements Memory.
func (b Bytes) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(b)) {
		return false
	}
	copy(b[offset:], v)
	return true
}

// ReadUint32Le implements Memory.
func (b Bytes) ReadUint32Le(offset uint32) (uint32, bool) {
	v, ok := b.Read(offset, LengthSize)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v), true
}
