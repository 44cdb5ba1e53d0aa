//go:build !wasip1

package hostcall

import (
	"fmt"
	"sync"
)

// Dispatcher serves host calls in native builds. Params and results use the
// wasm value encoding of wazero's api package: i32 and i64 values as their
// bit patterns, f64 values via api.EncodeF64.
type Dispatcher interface {
	Invoke(name string, params ...uint64) uint64
}

// DispatcherFunc adapts a function to a Dispatcher.
type DispatcherFunc func(name string, params ...uint64) uint64

func (f DispatcherFunc) Invoke(name string, params ...uint64) uint64 {
	return f(name, params...)
}

var (
	mu     sync.RWMutex
	active Dispatcher
)

// Install routes host calls to d and returns a function restoring the
// previous dispatcher.
func Install(d Dispatcher) (restore func()) {
	mu.Lock()
	prev := active
	active = d
	mu.Unlock()
	return func() {
		mu.Lock()
		active = prev
		mu.Unlock()
	}
}

// Available reports whether a dispatcher is installed.
func Available() bool {
	mu.RLock()
	defer mu.RUnlock()
	return active != nil
}

func invoke(name string, params ...uint64) uint64 {
	mu.RLock()
	d := active
	mu.RUnlock()
	if d == nil {
		panic(fmt.Sprintf("hostcall: %s called outside an Easegress host and no dispatcher is installed", name))
	}
	return d.Invoke(name, params...)
}
