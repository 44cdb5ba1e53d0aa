//go:build !wasip1

package log

import (
	"fmt"
	"os"

	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// emit falls back to stderr when no simulated host is installed.
func emit(level int32, msg string) {
	if !hostcall.Available() {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", levelNames[level], msg)
		return
	}
	abi.WithText(msg, abi.Void(func(off uint32) {
		hostcall.Log(level, off)
	}))
}
