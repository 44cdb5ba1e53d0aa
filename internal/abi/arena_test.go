//go:build !wasip1

package abi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateRelease(t *testing.T) {
	Reset()

	size := uint32(1024)
	ptr, err := Allocate(size)
	require.NoError(t, err)
	require.NotZero(t, ptr, "allocate returned 0")

	count, total := Stats()
	assert.Equal(t, 1, count)
	assert.Equal(t, int(size), total)

	data := []byte("hello world")
	require.True(t, Memory().Write(ptr, data))
	got, ok := Memory().Read(ptr, uint32(len(data)))
	require.True(t, ok)
	assert.Equal(t, data, got)

	Release(ptr)

	count, total = Stats()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, Simulated().Live())
}

func TestAllocate_ZeroSize(t *testing.T) {
	ptr, err := Allocate(0)
	require.NoError(t, err)
	assert.Zero(t, ptr)
}

func TestRelease_Idempotent(t *testing.T) {
	Reset()

	ptr, err := Allocate(100)
	require.NoError(t, err)
	Release(ptr)
	Release(ptr)
	Release(0)

	count, total := Stats()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, total)
}

func TestFreeAllTracked(t *testing.T) {
	Reset()

	_, err := Allocate(100)
	require.NoError(t, err)
	_, err = Allocate(200)
	require.NoError(t, err)

	count, total := Stats()
	require.Equal(t, 2, count)
	require.Equal(t, 300, total)

	FreeAllTracked()

	count, total = Stats()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, Simulated().Live())
}

func TestConfigure_WithMaxTotalAllocations(t *testing.T) {
	Reset()
	Configure(WithMaxTotalAllocations(1024))
	t.Cleanup(func() {
		Configure(WithMaxTotalAllocations(DefaultMaxTotalAllocations))
		Reset()
	})

	ptr, err := Allocate(512)
	require.NoError(t, err)
	require.NotZero(t, ptr)

	_, err = Allocate(1024)
	require.ErrorIs(t, err, ErrLimitExceeded)

	Release(ptr)
	_, err = Allocate(1024)
	require.NoError(t, err)
}

func TestConfigure_InvalidLimit(t *testing.T) {
	Reset()

	Configure(WithMaxTotalAllocations(0))
	Configure(WithMaxTotalAllocations(-100))

	ptr, err := Allocate(1024)
	require.NoError(t, err)
	require.NotZero(t, ptr)
	Release(ptr)
}

func TestCodec_UsesArena(t *testing.T) {
	Reset()

	buf, err := Codec().EncodeText("tracked")
	require.NoError(t, err)

	count, _ := Stats()
	assert.Equal(t, 1, count)
	assert.Equal(t, "tracked", Codec().DecodeText(buf.Offset))

	Codec().Release(buf)
	count, _ = Stats()
	assert.Equal(t, 0, count)
}

func TestConcurrency(t *testing.T) {
	Reset()

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(iterations)
	for range iterations {
		go func() {
			defer wg.Done()
			buf, err := Codec().EncodeBytes([]byte("concurrent test data"))
			if err != nil {
				return
			}
			_ = Codec().DecodeBytes(buf.Offset)
			Codec().Release(buf)
		}()
	}
	wg.Wait()

	count, _ := Stats()
	assert.Equal(t, 0, count)
}
