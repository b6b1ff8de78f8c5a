// Package router selects the shard that owns a key.
// A Router pairs an immutable shardring.HashRing with one shard value per real node
// and swaps both atomically when the topology changes.
package router
