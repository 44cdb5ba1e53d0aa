package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// Guest exports required from every plugin module.
const (
	exportAlloc = "wasm_alloc"
	exportFree  = "wasm_free"
	exportInit  = "wasm_init"
	exportRun   = "wasm_run"
)

var requiredExports = []string{exportAlloc, exportFree, exportInit, exportRun}

// ErrMissingExport is returned when a plugin lacks one of the lifecycle
// exports.
var ErrMissingExport = errors.New("missing guest export")

// Guest is the plugin side of a host call: its linear memory and its
// allocator.
type Guest interface {
	Memory() marshal.Memory
	Allocate(ctx context.Context, size uint32) (uint32, error)
	Release(ctx context.Context, offset uint32) error
}

// moduleGuest is a Guest backed by a wazero module instance.
type moduleGuest struct {
	mod api.Module
}

func (g moduleGuest) Memory() marshal.Memory {
	return g.mod.Memory()
}

func (g moduleGuest) Allocate(ctx context.Context, size uint32) (uint32, error) {
	fn := g.mod.ExportedFunction(exportAlloc)
	if fn == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingExport, exportAlloc)
	}
	results, err := fn.Call(ctx, api.EncodeU32(size))
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", exportAlloc, err)
	}
	ptr := api.DecodeU32(results[0])
	if ptr == 0 {
		return 0, fmt.Errorf("%s returned a null pointer for %d bytes", exportAlloc, size)
	}
	return ptr, nil
}

func (g moduleGuest) Release(ctx context.Context, offset uint32) error {
	fn := g.mod.ExportedFunction(exportFree)
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrMissingExport, exportFree)
	}
	if _, err := fn.Call(ctx, api.EncodeU32(offset)); err != nil {
		return fmt.Errorf("call %s: %w", exportFree, err)
	}
	return nil
}

// guestAllocator binds a Guest to one call context so that a marshal.Codec
// can place frames in it. Allocation errors surface through the codec;
// release errors are logged.
type guestAllocator struct {
	ctx   context.Context
	guest Guest
	cfg   *config
}

func (a guestAllocator) Allocate(size uint32) (uint32, error) {
	return a.guest.Allocate(a.ctx, size)
}

func (a guestAllocator) Release(offset uint32) {
	if err := a.guest.Release(a.ctx, offset); err != nil {
		a.cfg.logger.WarnContext(a.ctx, "host: release guest buffer", "offset", offset, "error", err)
	}
}

func newGuestCodec(ctx context.Context, cfg *config, g Guest) *marshal.Codec {
	return marshal.NewCodec(g.Memory(), guestAllocator{ctx: ctx, guest: g, cfg: cfg})
}
