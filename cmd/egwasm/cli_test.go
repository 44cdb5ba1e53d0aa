package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wippyai/wasm-runtime/wat"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of the command tree to its default, since
// rootCmd is shared by all tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// echoPlugin answers with the request method as the body and status 201.
const echoPlugin = `(module
  (import "easegress" "host_req_get_method" (func $get_method (result i32)))
  (import "easegress" "host_resp_set_status_code" (func $set_status (param i32)))
  (import "easegress" "host_resp_set_header" (func $set_header (param i32 i32)))
  (memory (export "memory") 1)
  (global $heap (mut i32) (i32.const 1024))
  (data (i32.const 16) "\0d\00\00\00X-Powered-By\00")
  (data (i32.const 48) "\07\00\00\00egwasm\00")
  (func (export "wasm_alloc") (param $size i32) (result i32)
    (local $ptr i32)
    (local.set $ptr (global.get $heap))
    (global.set $heap (i32.add (global.get $heap) (local.get $size)))
    (local.get $ptr))
  (func (export "wasm_free") (param i32))
  (func (export "wasm_init") (param i32))
  (func (export "wasm_run") (result i32)
    (call $set_status (i32.const 201))
    (call $set_header (i32.const 16) (i32.const 48))
    (i32.load (call $get_method))))`

func writePlugin(t *testing.T) string {
	t.Helper()
	bin, err := wat.Compile(echoPlugin)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo.wasm"), bin, 0o600))
	spec := filepath.Join(dir, "filter.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("name: echo\ncode: echo.wasm\nmaxConcurrency: 1\n"), 0o600))
	return spec
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	require.NoError(t, err)

	for _, phrase := range []string{"egwasm", "Easegress", "run", "serve", "schema", "--log-level"} {
		assert.Contains(t, output, phrase)
	}
}

func TestCLIRunHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "--help")
	require.NoError(t, err)

	for _, phrase := range []string{"--spec", "--url", "--method", "--header", "--data"} {
		assert.Contains(t, output, phrase)
	}
}

func TestCLISchema(t *testing.T) {
	output, err := executeCommand(rootCmd, "schema")
	require.NoError(t, err)
	assert.Contains(t, output, `"maxConcurrency"`)
	assert.Contains(t, output, `"parameters"`)
}

func TestCLIRun(t *testing.T) {
	spec := writePlugin(t)

	output, err := executeCommand(rootCmd, "run", "--spec", spec, "--method", "post",
		"--url", "http://localhost/x", "-H", "X-User: bob", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, output, "result: 5\n")
	assert.Contains(t, output, "status: 201\n")
	assert.Contains(t, output, "X-Powered-By: egwasm\n")
}

func TestCLIRun_Errors(t *testing.T) {
	spec := writePlugin(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing spec", []string{"run", "--spec", ""}, "--spec is required"},
		{"bad log level", []string{"run", "--spec", spec, "--log-level", "loud"}, "invalid --log-level"},
		{"missing file", []string{"run", "--spec", filepath.Join(t.TempDir(), "nope.yaml"), "--log-level", "info"}, "read spec"},
		{"bad header", []string{"run", "--spec", spec, "-H", "no-colon"}, "invalid header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(rootCmd, tt.args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
