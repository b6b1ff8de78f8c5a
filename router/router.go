package router

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	shardring "go-shardring"
)

var (
	// ErrNilRing is returned when no ring is supplied.
	ErrNilRing = errors.New("ring must not be nil")

	// ErrShardCountMismatch is returned when the shard list does not cover every real node.
	ErrShardCountMismatch = errors.New("shard count does not match real node count")
)

// Router routes keys to shards of type T.
type Router[T any] struct {
	topology atomic.Pointer[topology[T]]
	logger   *slog.Logger
}

// topology is published as a unit so readers never see a ring paired with the wrong shards.
type topology[T any] struct {
	ring   *shardring.HashRing
	shards []T
}

// Option configures a Router.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for topology changes.
// If the logger is nil, the router will use a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates a Router where shards[i] serves real node i of ring.
func New[T any](ring *shardring.HashRing, shards []T, opts ...Option) (*Router[T], error) {
	var cfg = config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	next, err := newTopology(ring, shards)
	if err != nil {
		return nil, err
	}

	var r = &Router[T]{logger: cfg.logger}
	r.topology.Store(next)
	return r, nil
}

func newTopology[T any](ring *shardring.HashRing, shards []T) (*topology[T], error) {
	if ring == nil {
		return nil, ErrNilRing
	}
	if len(shards) != ring.RealNodeCount() {
		return nil, fmt.Errorf("%w: %d shards for %d real nodes", ErrShardCountMismatch, len(shards), ring.RealNodeCount())
	}

	// Copy so later writes to the caller's slice cannot leak into a published topology
	var owned = make([]T, len(shards))
	copy(owned, shards)

	return &topology[T]{ring: ring, shards: owned}, nil
}

// Route returns the index and value of the shard owning key.
func (r *Router[T]) Route(key string) (int, T) {
	var (
		current = r.topology.Load()
		idx     = current.ring.Hash(key)
	)
	return idx, current.shards[idx]
}

// Swap atomically replaces the ring and shards. In-flight Route calls finish against
// the previous topology.
func (r *Router[T]) Swap(ring *shardring.HashRing, shards []T) error {
	next, err := newTopology(ring, shards)
	if err != nil {
		return fmt.Errorf("failed to swap topology: %w", err)
	}

	var previous = r.topology.Swap(next)
	r.logger.Info("swapped shard topology",
		"previous_real_nodes", previous.ring.RealNodeCount(),
		"real_nodes", ring.RealNodeCount(),
		"entries", ring.Len())

	return nil
}

// Ring returns the ring currently in use.
func (r *Router[T]) Ring() *shardring.HashRing {
	return r.topology.Load().ring
}

// Shards returns a copy of the shards currently in use.
func (r *Router[T]) Shards() []T {
	var (
		current = r.topology.Load()
		shards  = make([]T, len(current.shards))
	)
	copy(shards, current.shards)
	return shards
}
