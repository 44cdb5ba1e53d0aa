// Command egwasm runs Easegress WASM plugins outside Easegress.
package main

func main() {
	Execute()
}
