// Package linear simulates a WebAssembly linear memory.
//
// Native (non-wasm) builds of the SDK use it in place of the real module
// memory so that guest-side code, the codec and the host functions can run
// against the same offsets without a wasm toolchain.
package linear

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// PageSize is the size of a WebAssembly memory page.
const PageSize = 65536

// DefaultMaxPages caps the simulated memory at 64 MiB.
const DefaultMaxPages = 1024

// heapBase keeps offset 0 unused so that it can keep meaning "null".
const heapBase = 8

const align = 8

// ErrOutOfMemory is returned when an allocation would grow the memory past
// its page limit.
var ErrOutOfMemory = errors.New("linear: out of memory")

// Memory is a flat, growable byte array with a bump allocator.
// Its read/write methods have the same shape as wazero's api.Memory.
type Memory struct {
	data     []byte
	live     map[uint32]uint32 // offset -> size
	next     uint32
	maxPages uint32
	mu       sync.Mutex
}

// Option configures a Memory.
type Option func(*Memory)

// WithMaxPages limits how far the memory may grow.
func WithMaxPages(pages uint32) Option {
	return func(m *Memory) {
		if pages > 0 {
			m.maxPages = pages
		}
	}
}

// New creates a memory holding a single page.
func New(opts ...Option) *Memory {
	m := &Memory{
		data:     make([]byte, PageSize),
		live:     make(map[uint32]uint32),
		next:     heapBase,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Size returns the current memory size in bytes.
func (m *Memory) Size() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.data)) //nolint:gosec // bounded by maxPages
}

// Read returns a view of byteCount bytes at offset, or false if the range is
// out of bounds. The view is invalidated by later writes.
func (m *Memory) Read(offset, byteCount uint32) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(offset, byteCount) {
		return nil, false
	}
	return m.data[offset : offset+byteCount : offset+byteCount], true
}

// Write copies v into memory at offset.
func (m *Memory) Write(offset uint32, v []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(offset, uint32(len(v))) { //nolint:gosec // lengths beyond 4 GiB fail the bounds check anyway
		return false
	}
	copy(m.data[offset:], v)
	return true
}

// ReadUint32Le reads a little-endian uint32 at offset.
func (m *Memory) ReadUint32Le(offset uint32) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), true
}

// WriteUint32Le writes a little-endian uint32 at offset.
func (m *Memory) WriteUint32Le(offset, v uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.data[offset:], v)
	return true
}

// Allocate reserves size bytes and returns their offset. A zero size yields
// offset 0.
func (m *Memory) Allocate(size uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	offset := m.next
	end := uint64(offset) + uint64(size)
	if end > uint64(m.maxPages)*PageSize {
		return 0, fmt.Errorf("%w: requested %d bytes at offset %d", ErrOutOfMemory, size, offset)
	}
	for uint64(len(m.data)) < end {
		m.data = append(m.data, make([]byte, PageSize)...)
	}

	m.live[offset] = size
	m.next = uint32((end + align - 1) &^ (align - 1)) //nolint:gosec // end is below maxPages*PageSize
	return offset, nil
}

// Release frees the allocation starting at offset. Unknown offsets are
// ignored. Freeing the most recent allocation rewinds the bump pointer.
func (m *Memory) Release(offset uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	size, ok := m.live[offset]
	if !ok {
		return
	}
	delete(m.live, offset)
	if (offset+size+align-1)&^(align-1) == m.next {
		m.next = offset
	}
	if len(m.live) == 0 {
		m.next = heapBase
	}
}

// Live reports the number of outstanding allocations.
func (m *Memory) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Reset drops every allocation and zeroes the memory.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
	clear(m.live)
	m.next = heapBase
}

func (m *Memory) inBounds(offset, byteCount uint32) bool {
	return uint64(offset)+uint64(byteCount) <= uint64(len(m.data))
}
