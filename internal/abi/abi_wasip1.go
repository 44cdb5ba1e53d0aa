//go:build wasip1

package abi

import (
	"encoding/binary"
	"unsafe"

	"github.com/easegress-io/easegress-go-sdk/marshal"
)

var (
	current = newArena(heap{})
	codec   = marshal.NewCodec(Memory(), Allocator())
)

// heap allocates from the Go heap. On wasm32 a heap address is a linear
// memory offset.
type heap struct{}

func (heap) allocate(size uint32) (uint32, []byte, error) {
	buf := make([]byte, size)
	//nolint:gosec // G103: heap address is the linear memory offset on wasm32
	return uint32(uintptr(unsafe.Pointer(&buf[0]))), buf, nil
}

// Unpinning is enough; the GC reclaims the slice.
func (heap) release(uint32) {}

// Memory returns the module's own linear memory.
func Memory() marshal.Memory {
	return linearMemory{}
}

// linearMemory addresses the module's memory directly. The boundary is
// trusted, so only the null offset is rejected.
type linearMemory struct{}

func view(offset, n uint32) []byte {
	//nolint:gosec // G103: valid unsafe.Pointer use for WASM linear memory access
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(offset))), n)
}

func (linearMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if offset == 0 {
		return nil, false
	}
	return view(offset, byteCount), true
}

func (linearMemory) Write(offset uint32, v []byte) bool {
	if offset == 0 {
		return len(v) == 0
	}
	copy(view(offset, uint32(len(v))), v) //nolint:gosec // bounded by wasm32
	return true
}

func (linearMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	if offset == 0 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(view(offset, 4)), true
}

// wasmAlloc is called by the host to place arguments for the guest. An
// allocation failure faults the instance.
//
//go:wasmexport wasm_alloc
func wasmAlloc(size uint32) uint32 {
	ptr, err := Allocate(size)
	if err != nil {
		panic(err)
	}
	return ptr
}

//go:wasmexport wasm_free
func wasmFree(ptr uint32) {
	Release(ptr)
}
