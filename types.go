// Package shardring maps string keys to a fixed set of real shard indexes using a
// consistent hashing ring with virtual nodes.
//
// A HashRing is built once by New and never changes afterwards, so lookups need no
// locking. To change the number of shards, build a new ring and swap it in; the
// router package does that atomically together with the shard handles.
//
//	ring, err := shardring.New(32, 64)
//	if err != nil {
//		return err
//	}
//	shard := ring.Hash("user:42") // in [0, 32)
package shardring

import "errors"

// ErrInvalidArgument is returned when a ring cannot be built from the given arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// virtualNodeNameFormat names the virtual node for (real index, slot).
const virtualNodeNameFormat = "VIRTUAL-%d-NODE-%d"

// HashRing is an immutable consistent hashing ring with virtual nodes.
// It is safe for concurrent use once New returns.
type HashRing struct {
	positions        []int32 // Sorted ascending by signed value
	owners           []int   // owners[i] is the real node at positions[i]
	realNodeCount    int
	virtualNodeCount int
	collisions       int
	hashFunc         HashFunc
}

// Entry is a single virtual node position on the ring and its owning real node.
type Entry struct {
	Position int32
	Owner    int
}
