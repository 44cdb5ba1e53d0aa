// Package program turns a user type into an Easegress WASM program.
//
// The host initializes a program once per module instance with its
// parameters and then runs it once per request:
//
//	type Filter struct{ header string }
//
//	func (f *Filter) Run() int32 { ... }
//
//	func init() {
//		program.MustRegister(program.Define(func(p *program.Params) *Filter {
//			return &Filter{header: p.GetStringDefault("header", "X-Wasm")}
//		}))
//	}
//
// The wasip1 build exports wasm_init and wasm_run, which forward to the
// registered program.
package program

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// Definition describes how to build and run a program of type T.
type Definition[T any] struct {
	// Construct builds an instance from its parameters.
	Construct func(*Params) T `validate:"required"`

	// Run handles one request and returns its status code.
	// A nil Run always returns 0.
	Run func(T) int32
}

// Runner is implemented by program types that carry their own Run method.
type Runner interface {
	Run() int32
}

// Define builds a Definition for a type that implements Runner.
func Define[T Runner](construct func(*Params) T) Definition[T] {
	return Definition[T]{
		Construct: construct,
		Run:       func(t T) int32 { return t.Run() },
	}
}

// State is the lifecycle state of a Controller.
type State int

const (
	// StateDefaulted means the instance was built from empty parameters
	// because the host has not called init yet.
	StateDefaulted State = iota
	// StateInitialized means the instance was built by an init call.
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateDefaulted:
		return "defaulted"
	case StateInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller owns the single instance of a program inside a module
// instance. It is not safe for concurrent use; a module instance is
// single-threaded.
type Controller[T any] struct {
	def     Definition[T]
	codec   *marshal.Codec
	logger  *slog.Logger
	current T
	state   State
	inits   int
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	codec  *marshal.Codec
	logger *slog.Logger
}

// WithCodec sets the codec used to decode init parameters. The default
// reads this instance's own linear memory.
func WithCodec(c *marshal.Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// New validates def and returns a controller holding an instance built from
// empty parameters.
func New[T any](def Definition[T], opts ...Option) (*Controller[T], error) {
	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("invalid program definition: %w", err)
	}

	cfg := config{codec: abi.Codec(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Controller[T]{
		def:    def,
		codec:  cfg.codec,
		logger: cfg.logger,
	}
	c.current = def.Construct(NewParams())
	return c, nil
}

// Init decodes the parameter list at offset and replaces the stored
// instance. The list holds alternating keys and values; for duplicate keys
// the last value wins. The buffer is not released; it belongs to the host.
//
// A malformed list or an odd element count faults the instance.
func (c *Controller[T]) Init(offset uint32) {
	items := c.codec.DecodeTextList(offset)
	params, err := ParamsFromPairs(items...)
	if err != nil {
		panic(err)
	}
	c.InitParams(params)
}

// InitParams replaces the stored instance with one built from params.
func (c *Controller[T]) InitParams(params *Params) {
	if params == nil {
		params = NewParams()
	}
	c.current = c.def.Construct(params)
	c.state = StateInitialized
	c.inits++
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "program initialized",
		slog.Int("params", params.Len()),
		slog.Int("inits", c.inits),
	)
}

// Run runs the stored instance and returns its status code.
func (c *Controller[T]) Run() int32 {
	if c.def.Run == nil {
		return 0
	}
	return c.def.Run(c.current)
}

// State reports whether the stored instance came from an init call.
func (c *Controller[T]) State() State {
	return c.state
}

// Current returns the stored instance.
func (c *Controller[T]) Current() T {
	return c.current
}
