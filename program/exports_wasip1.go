//go:build wasip1

package program

//go:wasmexport wasm_init
func wasmInit(offset uint32) {
	Init(offset)
}

//go:wasmexport wasm_run
func wasmRun() int32 {
	return Run()
}
