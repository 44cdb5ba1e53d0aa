package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/easegress-io/easegress-go-sdk/marshal"
	"github.com/easegress-io/easegress-go-sdk/program"
)

// Instance is one instantiated plugin. An Instance is not safe for
// concurrent use; pool instances to serve requests in parallel.
type Instance struct {
	mod api.Module
	cfg *config
}

// Init sends params to the guest's wasm_init. The parameter blob is placed
// with the guest allocator and released once the guest has consumed it.
func (i *Instance) Init(ctx context.Context, params *program.Params) error {
	guest := moduleGuest{mod: i.mod}
	codec := newGuestCodec(ctx, i.cfg, guest)

	buf, err := codec.EncodeTextList(params.Pairs())
	if err != nil {
		return fmt.Errorf("failed to place parameters: %w", err)
	}
	defer codec.Release(buf)

	if _, err := i.mod.ExportedFunction(exportInit).Call(ctx, api.EncodeU32(buf.Offset)); err != nil {
		return fmt.Errorf("%s failed: %w", exportInit, err)
	}
	return nil
}

// Run calls the guest's wasm_run with ex as the current HTTP context and
// returns the result code.
func (i *Instance) Run(ctx context.Context, ex *Exchange) (int32, error) {
	results, err := i.mod.ExportedFunction(exportRun).Call(WithExchange(ctx, ex))
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w", exportRun, err)
	}
	return api.DecodeI32(results[0]), nil
}

// Memory exposes the instance's linear memory.
func (i *Instance) Memory() marshal.Memory {
	return i.mod.Memory()
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
