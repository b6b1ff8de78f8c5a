package shardring

import (
	"fmt"
	"sort"
	"strings"
)

// New builds a ring with virtualNodeCount positions for each of realNodeCount real nodes.
// Virtual nodes are named by VirtualNodeName and hashed in real-index, then slot order;
// when two names hash to the same position the later one owns it.
func New(realNodeCount, virtualNodeCount int, opts ...Option) (*HashRing, error) {
	if realNodeCount <= 0 {
		return nil, fmt.Errorf("%w: realNodeCount must be positive: %d", ErrInvalidArgument, realNodeCount)
	}
	if virtualNodeCount <= 0 {
		return nil, fmt.Errorf("%w: virtualNodeCount must be positive: %d", ErrInvalidArgument, virtualNodeCount)
	}

	var options = defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var (
		buckets    = make(map[int32]int, realNodeCount*virtualNodeCount)
		collisions = 0
	)
	for i := range realNodeCount {
		for n := range virtualNodeCount {
			var position = options.hashFunc(VirtualNodeName(i, n))
			if _, taken := buckets[position]; taken {
				collisions++
			}
			buckets[position] = i
		}
	}

	var r = &HashRing{
		realNodeCount:    realNodeCount,
		virtualNodeCount: virtualNodeCount,
		collisions:       collisions,
		hashFunc:         options.hashFunc,
	}
	r.fill(buckets)

	options.logger.Debug("built hash ring",
		"real_nodes", realNodeCount,
		"virtual_nodes", virtualNodeCount,
		"entries", len(r.positions),
		"collisions", collisions)
	if collisions > 0 {
		options.logger.Warn("virtual node positions collided, later nodes took over",
			"collisions", collisions)
	}

	return r, nil
}

// VirtualNodeName returns the identifier hashed to place slot of real node realIndex on the ring.
func VirtualNodeName(realIndex, slot int) string {
	return fmt.Sprintf(virtualNodeNameFormat, realIndex, slot)
}

// fill lays the buckets out as sorted parallel slices.
func (r *HashRing) fill(buckets map[int32]int) {
	r.positions = make([]int32, 0, len(buckets))
	for position := range buckets {
		r.positions = append(r.positions, position)
	}
	sort.Slice(r.positions, func(i, j int) bool {
		return r.positions[i] < r.positions[j]
	})

	r.owners = make([]int, len(r.positions))
	for i, position := range r.positions {
		r.owners[i] = buckets[position]
	}
}

// Hash returns the real node index in [0, RealNodeCount()) that owns key.
func (r *HashRing) Hash(key string) int {
	var _, owner = r.Owner(key)
	return owner
}

// Owner returns the ring position that key resolved to and the real node owning it.
// The position is the first one at or after the key's hash, wrapping to the smallest.
func (r *HashRing) Owner(key string) (int32, int) {
	var idx = r.successor(r.hashFunc(key))
	return r.positions[idx], r.owners[idx]
}

// successor returns the index of the smallest position >= target, wrapping to 0.
func (r *HashRing) successor(target int32) int {
	// Binary search for the first position >= target
	idx := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i] >= target
	})

	// Wrap around if target is past every position
	if idx >= len(r.positions) {
		return 0
	}
	return idx
}

// Without returns a new ring holding every entry of r except those owned by the given
// real nodes. Remaining nodes keep their indexes, so only keys owned by the removed
// nodes resolve differently. The reduced ring reports no collisions of its own.
// It fails when no position would be left, which happens when the remaining nodes
// lost every position to collisions during construction.
func (r *HashRing) Without(realIndexes ...int) (*HashRing, error) {
	var removed = make(map[int]bool, len(realIndexes))
	for _, idx := range realIndexes {
		if idx < 0 || idx >= r.realNodeCount {
			return nil, fmt.Errorf("%w: real node index out of range [0, %d): %d", ErrInvalidArgument, r.realNodeCount, idx)
		}
		removed[idx] = true
	}
	if len(removed) == r.realNodeCount {
		return nil, fmt.Errorf("%w: cannot remove all %d real nodes", ErrInvalidArgument, r.realNodeCount)
	}

	var reduced = &HashRing{
		positions:        make([]int32, 0, len(r.positions)),
		owners:           make([]int, 0, len(r.owners)),
		realNodeCount:    r.realNodeCount,
		virtualNodeCount: r.virtualNodeCount,
		hashFunc:         r.hashFunc,
	}
	for i, owner := range r.owners {
		if removed[owner] {
			continue
		}
		reduced.positions = append(reduced.positions, r.positions[i])
		reduced.owners = append(reduced.owners, owner)
	}
	if len(reduced.positions) == 0 {
		return nil, fmt.Errorf("%w: no positions left after removing real nodes %v", ErrInvalidArgument, realIndexes)
	}

	return reduced, nil
}

// Len returns the number of positions on the ring.
func (r *HashRing) Len() int {
	return len(r.positions)
}

// RealNodeCount returns the number of real nodes the ring was built for.
func (r *HashRing) RealNodeCount() int {
	return r.realNodeCount
}

// VirtualNodeCount returns the number of virtual nodes per real node.
func (r *HashRing) VirtualNodeCount() int {
	return r.virtualNodeCount
}

// Collisions returns how many virtual nodes lost their position to a later one during construction.
// Rings derived by Without were not constructed and report 0.
func (r *HashRing) Collisions() int {
	return r.collisions
}

// Entries returns a copy of the ring in ascending position order.
func (r *HashRing) Entries() []Entry {
	var entries = make([]Entry, len(r.positions))
	for i, position := range r.positions {
		entries[i] = Entry{Position: position, Owner: r.owners[i]}
	}
	return entries
}

// String returns a visual representation of the ring.
func (r *HashRing) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("HashRing: real nodes %d | virtual nodes %d\n", r.realNodeCount, r.virtualNodeCount))
	b.WriteString(fmt.Sprintf("Entries: %d | Collisions: %d\n", len(r.positions), r.collisions))

	b.WriteString("\nRing Topology:\n")
	b.WriteString("┌─────────────────────────────────────────────────────────────┐\n")

	var perNode = make([]int, r.realNodeCount)
	for i, position := range r.positions {
		var prevPos int32
		if i == 0 {
			prevPos = r.positions[len(r.positions)-1]
		} else {
			prevPos = r.positions[i-1]
		}

		var rangeStr string
		if prevPos >= position {
			rangeStr = fmt.Sprintf("(%d..max,min..%d]", prevPos, position)
		} else {
			rangeStr = fmt.Sprintf("(%d..%d]", prevPos, position)
		}

		b.WriteString(fmt.Sprintf("│ @%-12d  node %-5d  %s\n", position, r.owners[i], rangeStr))
		perNode[r.owners[i]]++
	}

	b.WriteString("└─────────────────────────────────────────────────────────────┘\n")

	// Node summary
	b.WriteString("\nNode Summary:\n")
	for node, count := range perNode {
		b.WriteString(fmt.Sprintf("  node %-5d  entries: %d\n", node, count))
	}

	return b.String()
}
