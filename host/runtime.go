package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Runtime compiles and instantiates Easegress plugins. One Runtime serves
// any number of modules and instances.
type Runtime struct {
	runtime wazero.Runtime
	cfg     config
}

// NewRuntime creates a wazero runtime with WASI and the easegress host
// module installed.
func NewRuntime(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := newConfig(opts)

	rc := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.maxMemoryPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.maxMemoryPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	r := &Runtime{runtime: rt, cfg: cfg}
	if err := r.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}
	return r, nil
}

func (r *Runtime) registerHostFunctions(ctx context.Context) error {
	builder := r.runtime.NewHostModuleBuilder(ModuleName)
	for _, f := range hostFunctions() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				f.invoke(ctx, &r.cfg, moduleGuest{mod: mod}, stack)
			}), f.params, f.results).
			Export(f.name)
	}
	_, err := builder.Instantiate(ctx)
	return err
}

// Close releases the runtime and every module compiled by it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Module is a compiled plugin.
type Module struct {
	rt       *Runtime
	compiled wazero.CompiledModule
}

// Compile validates wasm as an Easegress plugin and compiles it.
func (r *Runtime) Compile(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	exports := compiled.ExportedFunctions()
	var missing []error
	for _, name := range requiredExports {
		if _, ok := exports[name]; !ok {
			missing = append(missing, fmt.Errorf("%w: %s", ErrMissingExport, name))
		}
	}
	if err := errors.Join(missing...); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	return &Module{rt: r, compiled: compiled}, nil
}

// Instantiate creates a fresh instance of the module. The instance is not
// initialized; call Init before Run.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	mc := wazero.NewModuleConfig().WithName("")
	mod, err := m.rt.runtime.InstantiateModule(ctx, m.compiled, mc)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	return &Instance{mod: mod, cfg: &m.rt.cfg}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
