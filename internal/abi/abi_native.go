//go:build !wasip1

package abi

import (
	"github.com/easegress-io/easegress-go-sdk/internal/linear"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// Outside wasm the arena allocates from a simulated linear memory big
// enough for the default cap.
var (
	sim     = linear.New(linear.WithMaxPages(DefaultMaxTotalAllocations/linear.PageSize + 64))
	current = newArena(simulated{sim})
	codec   = marshal.NewCodec(Memory(), Allocator())
)

type simulated struct {
	mem *linear.Memory
}

func (s simulated) allocate(size uint32) (uint32, []byte, error) {
	ptr, err := s.mem.Allocate(size)
	return ptr, nil, err
}

func (s simulated) release(ptr uint32) {
	s.mem.Release(ptr)
}

// Memory returns the simulated linear memory.
func Memory() marshal.Memory {
	return sim
}

// Simulated returns the simulated linear memory for host-side tooling that
// plays the role of the Easegress host in-process.
func Simulated() *linear.Memory {
	return sim
}

// Reset frees every allocation and zeroes the simulated memory.
func Reset() {
	current.freeAll()
	sim.Reset()
}
