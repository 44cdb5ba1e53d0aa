// Package host runs Easegress WASM plugins outside Easegress.
//
// It provides the "easegress" host module on top of wazero, drives the
// wasm_init / wasm_run lifecycle of guest instances, and pools instances
// behind a Filter that behaves like the Easegress WasmHost filter. The same
// host functions are available in-process through NativeDispatcher, which
// lets guest code built for the native target run against a simulated host
// in tests.
package host
