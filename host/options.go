package host

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// DefaultMaxFrameSize bounds the length a guest may declare for a frame it
// passes to a host function.
const DefaultMaxFrameSize = 16 << 20

// Option configures a Runtime or a NativeDispatcher.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	cluster ClusterStore
	now     func() time.Time
	rand    func() float64

	maxFrameSize uint32

	// maxMemoryPages caps each guest's linear memory; 0 keeps wazero's
	// default.
	maxMemoryPages uint32
}

func defaultConfig() config {
	return config{
		logger:  slog.Default(),
		cluster: NewMemoryCluster(),
		now:     time.Now,
		rand:    rand.Float64,

		maxFrameSize: DefaultMaxFrameSize,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used for guest log output and host errors.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCluster sets the store behind the cluster host functions. The
// default is a fresh in-memory store.
func WithCluster(s ClusterStore) Option {
	return func(c *config) {
		if s != nil {
			c.cluster = s
		}
	}
}

// WithClock overrides the wall clock reported to guests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRand overrides the random source reported to guests.
func WithRand(fn func() float64) Option {
	return func(c *config) {
		if fn != nil {
			c.rand = fn
		}
	}
}

// WithMaxMemoryPages caps the linear memory of every guest instance, in
// 64 KiB pages.
func WithMaxMemoryPages(pages uint32) Option {
	return func(c *config) {
		c.maxMemoryPages = pages
	}
}

// WithMaxFrameSize sets the largest frame a guest may pass to a host
// function. Larger frames fault the guest.
func WithMaxFrameSize(size uint32) Option {
	return func(c *config) {
		if size > 0 {
			c.maxFrameSize = size
		}
	}
}
