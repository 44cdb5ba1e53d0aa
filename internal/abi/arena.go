// Package abi owns the guest side of linear memory: the wasm_alloc and
// wasm_free exports and the bookkeeping behind them.
//
// Whoever allocates a buffer owns it until it releases it. Host calls that
// return a buffer transfer its ownership to the guest.
package abi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// DefaultMaxTotalAllocations is the default cap on outstanding allocations.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// ErrLimitExceeded is returned when an allocation would push the outstanding
// total past the configured limit.
var ErrLimitExceeded = errors.New("abi: memory allocation limit exceeded")

// backend provides the raw memory behind the arena. pin is kept reachable
// for as long as the allocation is tracked.
type backend interface {
	allocate(size uint32) (ptr uint32, pin []byte, err error)
	release(ptr uint32)
}

type allocation struct {
	pin  []byte
	size uint32
}

// arena tracks every allocation made through wasm_alloc so that the memory
// stays pinned until wasm_free.
type arena struct {
	mu       sync.Mutex
	backend  backend
	ptrs     map[uint32]allocation
	total    int
	maxTotal int
}

func newArena(b backend) *arena {
	return &arena{
		backend:  b,
		ptrs:     make(map[uint32]allocation),
		maxTotal: DefaultMaxTotalAllocations,
	}
}

func (a *arena) allocate(size uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.total+int(size) > a.maxTotal {
		return 0, fmt.Errorf("%w (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			ErrLimitExceeded, size, a.total, a.maxTotal)
	}

	ptr, pin, err := a.backend.allocate(size)
	if err != nil {
		return 0, err
	}
	a.ptrs[ptr] = allocation{pin: pin, size: size}
	a.total += int(size)
	return ptr, nil
}

// release is idempotent; untracked pointers are ignored.
func (a *arena) release(ptr uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	alloc, ok := a.ptrs[ptr]
	if !ok {
		return
	}
	delete(a.ptrs, ptr)
	a.backend.release(ptr)
	a.total -= int(alloc.size)
	if a.total < 0 {
		a.total = 0
	}
}

func (a *arena) freeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for ptr := range a.ptrs {
		a.backend.release(ptr)
	}
	clear(a.ptrs)
	a.total = 0
}

func (a *arena) stats() (count, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ptrs), a.total
}

// Option configures the arena.
type Option func(*arena)

// WithMaxTotalAllocations sets the allocation cap. Non-positive values are
// ignored.
func WithMaxTotalAllocations(limit int) Option {
	return func(a *arena) {
		if limit > 0 {
			a.maxTotal = limit
		}
	}
}

// Configure applies opts to the process arena.
func Configure(opts ...Option) {
	current.mu.Lock()
	defer current.mu.Unlock()
	for _, opt := range opts {
		opt(current)
	}
}

// Allocate reserves size bytes of linear memory. A zero size returns 0.
func Allocate(size uint32) (uint32, error) {
	return current.allocate(size)
}

// Release frees a buffer returned by Allocate or handed over by the host.
func Release(ptr uint32) {
	current.release(ptr)
}

// FreeAllTracked frees every outstanding allocation. It is meant for panic
// recovery and teardown.
func FreeAllTracked() {
	current.freeAll()
}

// Stats reports the number of outstanding allocations and their total size.
func Stats() (count, totalBytes int) {
	return current.stats()
}

// Allocator exposes the process arena as a marshal.Allocator.
func Allocator() marshal.Allocator {
	return allocator{}
}

type allocator struct{}

func (allocator) Allocate(size uint32) (uint32, error) { return Allocate(size) }
func (allocator) Release(ptr uint32)                   { Release(ptr) }

// Codec returns a codec over this instance's linear memory and arena.
func Codec() *marshal.Codec {
	return codec
}
