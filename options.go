package shardring

import (
	"io"
	"log/slog"
)

// options configures HashRing construction (internal only).
type options struct {
	hashFunc HashFunc
	logger   *slog.Logger
}

// defaultOptions returns sensible defaults.
func defaultOptions() options {
	return options{
		hashFunc: Murmur3,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option is a functional option for configuring a HashRing.
type Option func(*options)

// WithHashFunc sets the hash applied to virtual node names and lookup keys.
// A nil function restores the default.
// DEFAULT: Murmur3
func WithHashFunc(fn HashFunc) Option {
	return func(o *options) {
		if fn == nil {
			o.hashFunc = Murmur3
			return
		}

		o.hashFunc = fn
	}
}

// WithLogger sets the logger used while building the ring.
// If the logger is nil, the ring will use a no-op logger.
// DEFAULT: A no-op logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			return
		}

		o.logger = logger
	}
}
