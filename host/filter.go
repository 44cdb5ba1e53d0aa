package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrClosed is returned by a Filter after Close.
var ErrClosed = errors.New("filter closed")

// Filter runs a plugin against HTTP exchanges, the way the Easegress
// WasmHost filter does. It keeps a pool of MaxConcurrency initialized
// instances; an exchange waits for a free instance. An instance that fails
// is discarded and replaced.
type Filter struct {
	spec   *Spec
	rt     *Runtime
	module *Module
	pool   chan *Instance
	done   chan struct{}

	// mu orders returns to the pool against Close, so no instance is
	// pooled after the final drain.
	mu     sync.Mutex
	closed bool
}

// NewFilter compiles spec.Code and fills the instance pool.
func NewFilter(ctx context.Context, rt *Runtime, spec *Spec) (*Filter, error) {
	wasm, err := os.ReadFile(spec.Code)
	if err != nil {
		return nil, fmt.Errorf("read plugin: %w", err)
	}
	return NewFilterFromBytes(ctx, rt, spec, wasm)
}

// NewFilterFromBytes is NewFilter with the plugin already in memory;
// spec.Code is ignored and may be empty.
func NewFilterFromBytes(ctx context.Context, rt *Runtime, spec *Spec, wasm []byte) (*Filter, error) {
	spec.applyDefaults()
	if err := spec.check("Code"); err != nil {
		return nil, err
	}

	module, err := rt.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		spec:   spec,
		rt:     rt,
		module: module,
		pool:   make(chan *Instance, spec.MaxConcurrency),
		done:   make(chan struct{}),
	}
	for range spec.MaxConcurrency {
		inst, err := f.newInstance(ctx)
		if err != nil {
			_ = f.Close(ctx)
			return nil, err
		}
		f.pool <- inst
	}

	rt.cfg.logger.InfoContext(ctx, "host: filter ready",
		"filter", spec.Name, "instances", spec.MaxConcurrency)
	return f, nil
}

func (f *Filter) newInstance(ctx context.Context) (*Instance, error) {
	inst, err := f.module.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	if err := inst.Init(ctx, f.spec.Parameters); err != nil {
		_ = inst.Close(ctx)
		return nil, err
	}
	return inst, nil
}

// Handle runs the plugin once against ex and returns its result code.
// The run is aborted when it exceeds the spec's timeout.
func (f *Filter) Handle(ctx context.Context, ex *Exchange) (int32, error) {
	var inst *Instance
	select {
	case <-f.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	case inst = <-f.pool:
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(f.spec.Timeout))
	defer cancel()

	code, err := inst.Run(runCtx, ex)
	if err != nil {
		f.rt.cfg.logger.WarnContext(ctx, "host: plugin run failed, replacing instance",
			"filter", f.spec.Name, "error", err)
		_ = inst.Close(context.WithoutCancel(ctx))
		fresh, err2 := f.newInstance(context.WithoutCancel(ctx))
		if err2 != nil {
			f.rt.cfg.logger.ErrorContext(ctx, "host: failed to replace instance",
				"filter", f.spec.Name, "error", err2)
			f.release(nil)
			return 0, errors.Join(err, err2)
		}
		f.release(fresh)
		return 0, err
	}

	f.release(inst)
	return code, nil
}

// release returns inst to the pool. A nil inst leaves a slot empty and
// starts a background refill.
func (f *Filter) release(inst *Instance) {
	if inst == nil {
		go f.refill()
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		_ = inst.Close(context.Background())
		return
	}
	f.pool <- inst
}

func (f *Filter) refill() {
	for {
		select {
		case <-f.done:
			return
		case <-time.After(time.Second):
		}
		inst, err := f.newInstance(context.Background())
		if err == nil {
			f.release(inst)
			return
		}
	}
}

// ServeHTTP runs the plugin and writes the response it built. A plugin
// failure is reported as 500.
func (f *Filter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ex := NewExchange(r)
	code, err := f.Handle(r.Context(), ex)
	if err != nil {
		http.Error(w, "wasm plugin failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Eg-Wasm-Result", fmt.Sprint(code))
	if err := ex.WriteTo(w); err != nil {
		f.rt.cfg.logger.WarnContext(r.Context(), "host: write response", "error", err)
	}
}

// Spec returns the filter's spec with defaults applied.
func (f *Filter) Spec() *Spec {
	return f.spec
}

// Close releases every pooled instance and the compiled module.
func (f *Filter) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.done)

	var errs []error
	for {
		select {
		case inst := <-f.pool:
			errs = append(errs, inst.Close(ctx))
		default:
			errs = append(errs, f.module.Close(ctx))
			return errors.Join(errs...)
		}
	}
}
