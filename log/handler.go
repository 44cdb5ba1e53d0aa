// Package log routes log/slog records to the Easegress host log.
//
// The wasip1 build installs the handler as the slog default, so plugins can
// log with the plain slog API:
//
//	slog.Info("request rejected", "path", request.GetPath())
package log

import (
	"context"
	"log/slog"
	"strings"
)

// Host log levels.
const (
	levelDebug int32 = iota
	levelInfo
	levelWarning
	levelError
)

// Handler implements slog.Handler on top of the host_log import. Records
// are rendered as "message key=value ..." lines.
type Handler struct {
	opts   handlerConfig
	prefix string // group prefix for attribute keys
	attrs  string // pre-rendered attributes from WithAttrs
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are dropped in the guest and never cross the
// boundary.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource appends the source location (file:line) to each record.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle renders the record and sends it to the host.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	emit(hostLevel(record.Level), h.format(record))
	return nil
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

// WithGroup returns a Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// hostLevel maps a slog level onto the four host levels.
func hostLevel(l slog.Level) int32 {
	switch {
	case l < slog.LevelInfo:
		return levelDebug
	case l < slog.LevelWarn:
		return levelInfo
	case l < slog.LevelError:
		return levelWarning
	default:
		return levelError
	}
}
