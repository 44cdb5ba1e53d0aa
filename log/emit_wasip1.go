//go:build wasip1

package log

import (
	"log/slog"

	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
)

func init() {
	slog.SetDefault(slog.New(NewHandler(WithLevel(slog.LevelDebug))))
}

func emit(level int32, msg string) {
	abi.WithText(msg, abi.Void(func(off uint32) {
		hostcall.Log(level, off)
	}))
}
