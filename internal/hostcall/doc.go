// Package hostcall declares the functions imported from the "easegress" host
// module.
//
// Offsets passed in point at frames owned by the caller. Offsets returned
// point at frames the host placed with wasm_alloc; the guest owns them and
// must release them.
//
// Under wasip1 every function is a //go:wasmimport. Native builds forward
// each call by import name to an installed Dispatcher so that guest code can
// run in-process against a simulated host.
package hostcall
