//go:build !wasip1

package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// NativeDispatcher serves the host functions in-process to guest code built
// for the native target, against the SDK's simulated linear memory. Install
// it with hostcall.Install; guest packages then behave as inside a real
// host.
type NativeDispatcher struct {
	cfg   config
	funcs map[string]hostFunc

	mu sync.Mutex
	ex *Exchange
}

// NewNativeDispatcher returns a dispatcher serving ex. ex may be nil when
// only the instance-wide and cluster functions are used.
func NewNativeDispatcher(ex *Exchange, opts ...Option) *NativeDispatcher {
	fns := hostFunctions()
	d := &NativeDispatcher{
		cfg:   newConfig(opts),
		funcs: make(map[string]hostFunc, len(fns)),
		ex:    ex,
	}
	for _, f := range fns {
		d.funcs[f.name] = f
	}
	return d
}

// SetExchange replaces the exchange served to subsequent calls.
func (d *NativeDispatcher) SetExchange(ex *Exchange) {
	d.mu.Lock()
	d.ex = ex
	d.mu.Unlock()
}

// Invoke implements hostcall.Dispatcher.
func (d *NativeDispatcher) Invoke(name string, params ...uint64) uint64 {
	f, ok := d.funcs[name]
	if !ok {
		panic(fmt.Sprintf("host: unknown host function %s", name))
	}

	d.mu.Lock()
	ex := d.ex
	d.mu.Unlock()

	ctx := context.Background()
	if ex != nil {
		ctx = WithExchange(ctx, ex)
	}

	stack := make([]uint64, max(len(params), len(f.results)))
	copy(stack, params)
	f.invoke(ctx, &d.cfg, nativeGuest{}, stack)
	if len(f.results) == 0 {
		return 0
	}
	return stack[0]
}

// nativeGuest is the Guest of the simulated linear memory.
type nativeGuest struct{}

func (nativeGuest) Memory() marshal.Memory {
	return abi.Memory()
}

func (nativeGuest) Allocate(_ context.Context, size uint32) (uint32, error) {
	return abi.Allocate(size)
}

func (nativeGuest) Release(_ context.Context, offset uint32) error {
	abi.Release(offset)
	return nil
}
