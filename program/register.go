package program

import (
	"errors"
	"fmt"
)

// ErrAlreadyRegistered is returned when a second program is registered in
// the same module.
var ErrAlreadyRegistered = errors.New("program: a program is already registered")

// ErrNotRegistered is raised when the host calls into a module that never
// registered a program.
var ErrNotRegistered = errors.New("program: no program registered")

// lifecycle is the type-erased view of a Controller used by the exports.
type lifecycle interface {
	Init(offset uint32)
	Run() int32
}

var registered lifecycle

// Register binds def to this module instance. It must be called exactly
// once, typically from an init function.
func Register[T any](def Definition[T], opts ...Option) (*Controller[T], error) {
	if registered != nil {
		return nil, ErrAlreadyRegistered
	}
	c, err := New(def, opts...)
	if err != nil {
		return nil, err
	}
	registered = c
	return c, nil
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](def Definition[T], opts ...Option) *Controller[T] {
	c, err := Register(def, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to register program: %v", err))
	}
	return c
}

// Init forwards an init call from the host to the registered program.
func Init(offset uint32) {
	mustRegistered().Init(offset)
}

// Run forwards a run call from the host to the registered program.
func Run() int32 {
	return mustRegistered().Run()
}

func mustRegistered() lifecycle {
	if registered == nil {
		panic(ErrNotRegistered)
	}
	return registered
}
