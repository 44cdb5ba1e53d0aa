package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easegress-io/easegress-go-sdk/host"
)

var rootCmd = &cobra.Command{
	Use:   "egwasm",
	Short: "Run Easegress WebAssembly plugins locally",
	Long: `egwasm - Load an Easegress WasmHost filter spec and run its plugin
against HTTP requests, either once from the command line or as a local
HTTP server.

The plugin sees the same "easegress" host functions it would inside
Easegress; the cluster store is kept in memory.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", name)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// loadFilter reads the spec named by --spec and builds its filter on a new
// runtime. The returned cleanup closes both.
func loadFilter(ctx context.Context, cmd *cobra.Command) (*host.Filter, func(), error) {
	path, _ := cmd.Flags().GetString("spec")
	if path == "" {
		return nil, nil, fmt.Errorf("--spec is required")
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}

	spec, err := host.LoadSpec(path)
	if err != nil {
		return nil, nil, err
	}

	rt, err := host.NewRuntime(ctx, host.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	f, err := host.NewFilter(ctx, rt, spec)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		_ = f.Close(context.Background())
		_ = rt.Close(context.Background())
	}
	return f, cleanup, nil
}
