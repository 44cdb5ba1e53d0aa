// Package easegress is the Go SDK for writing Easegress WebAssembly
// plugins.
//
// A plugin registers a program (see package program) and uses the request,
// response and cluster packages while it runs. This package holds the
// instance-wide host operations.
package easegress

import (
	"fmt"
	"time"

	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
)

// LogLevel is the severity of a message sent with Log.
type LogLevel int32

const (
	Debug LogLevel = iota
	Info
	Warning
	Error
)

func (l LogLevel) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("LogLevel(%d)", int32(l))
	}
}

// Log writes msg to the Easegress log. For structured logging use log/slog;
// the SDK's log package routes it here.
func Log(level LogLevel, msg string) {
	abi.WithText(msg, abi.Void(func(off uint32) {
		hostcall.Log(int32(level), off)
	}))
}

// AddTag attaches a tag to the current request context.
func AddTag(tag string) {
	abi.WithText(tag, abi.Void(hostcall.AddTag))
}

// GetUnixTimeInMs returns the host's wall clock in Unix milliseconds.
func GetUnixTimeInMs() int64 {
	return hostcall.GetUnixTimeInMs()
}

// Now returns the host's wall clock.
func Now() time.Time {
	return time.UnixMilli(GetUnixTimeInMs())
}

// Rand returns a pseudo-random number in [0.0, 1.0) from the host.
func Rand() float64 {
	return hostcall.Rand()
}
