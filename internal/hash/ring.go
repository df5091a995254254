// Package hash implements a consistent hash ring over virtual worker ids.
package hash

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/stratum/types"
)

// Ring implements a consistent hash ring with virtual nodes.
//
// The ring maps entity ids (or arbitrary string keys) to virtual worker ids. The
// placement depends only on the worker ids, the virtual node count and the seed,
// so every process building a ring from the same inputs agrees on every lookup.
type Ring struct {
	// nodes contains all virtual nodes on the ring, sorted by hash
	nodes []virtualNode

	// workers holds the unique list of workers present on the ring
	workers []types.VirtualWorkerID

	// seed for hash function (0 means unseeded)
	seed uint64
}

// virtualNode represents a virtual node on the hash ring.
type virtualNode struct {
	hash   uint64                // Position on the ring
	worker types.VirtualWorkerID // Worker owning this virtual node
}

// NewRing creates a new consistent hash ring.
//
// Parameters:
//   - workers: Virtual worker ids to place on the ring (duplicates and the invalid id are ignored)
//   - virtualNodesPerWorker: Number of virtual nodes per worker (higher = better distribution)
//   - seed: Seed for the hash function (0 for unseeded)
//
// Returns:
//   - *Ring: Initialized hash ring
//
// Example:
//
//	ring := hash.NewRing([]types.VirtualWorkerID{3, 4, 5}, 150, 0)
//	owner := ring.NodeForEntity(entity.ID())
func NewRing(workers []types.VirtualWorkerID, virtualNodesPerWorker int, seed uint64) *Ring {
	if virtualNodesPerWorker < 1 {
		virtualNodesPerWorker = 1
	}

	ring := &Ring{
		nodes:   make([]virtualNode, 0, len(workers)*virtualNodesPerWorker),
		workers: make([]types.VirtualWorkerID, 0, len(workers)),
		seed:    seed,
	}

	// Deduplicate workers while preserving order
	seen := make(map[types.VirtualWorkerID]struct{}, len(workers))
	for _, w := range workers {
		if !w.IsValid() {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		ring.workers = append(ring.workers, w)
	}

	for _, w := range ring.workers {
		ring.addWorker(w, virtualNodesPerWorker)
	}

	// Sort nodes by hash for binary search; ties broken by worker id for determinism
	slices.SortFunc(ring.nodes, func(a, b virtualNode) int {
		switch {
		case a.hash < b.hash:
			return -1
		case a.hash > b.hash:
			return 1
		case a.worker < b.worker:
			return -1
		case a.worker > b.worker:
			return 1
		default:
			return 0
		}
	})

	return ring
}

// NodeForEntity finds the worker responsible for an entity id.
//
// Returns:
//   - types.VirtualWorkerID: Owning worker (InvalidVirtualWorkerID on an empty ring)
func (r *Ring) NodeForEntity(id types.EntityID) types.VirtualWorkerID {
	if len(r.nodes) == 0 {
		return types.InvalidVirtualWorkerID
	}

	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(id))

	return r.nodeByHash(r.hashBytes(b[:]))
}

// NodeForKey finds the worker responsible for an arbitrary string key.
//
// Returns:
//   - types.VirtualWorkerID: Owning worker (InvalidVirtualWorkerID on an empty ring)
func (r *Ring) NodeForKey(key string) types.VirtualWorkerID {
	if len(r.nodes) == 0 {
		return types.InvalidVirtualWorkerID
	}

	if r.seed != 0 {
		return r.nodeByHash(xxh3.HashStringSeed(key, r.seed))
	}

	return r.nodeByHash(xxh3.HashString(key))
}

// Workers returns the unique workers on the ring in insertion order.
func (r *Ring) Workers() []types.VirtualWorkerID {
	// Return a copy to avoid external mutation
	return append([]types.VirtualWorkerID(nil), r.workers...)
}

// Size returns the total number of virtual nodes on the ring.
func (r *Ring) Size() int {
	return len(r.nodes)
}

// addWorker adds virtual nodes for a worker to the ring.
func (r *Ring) addWorker(worker types.VirtualWorkerID, virtualNodes int) {
	var wb [4]byte
	binary.LittleEndian.PutUint32(wb[:], uint32(worker))
	base := r.hashBytes(wb[:])

	for i := range virtualNodes {
		// Fold the vnode index using the worker hash as seed for stable distribution.
		var ib [8]byte
		binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec
		r.nodes = append(r.nodes, virtualNode{
			hash:   xxh3.HashSeed(ib[:], base),
			worker: worker,
		})
	}
}

func (r *Ring) hashBytes(b []byte) uint64 {
	if r.seed != 0 {
		return xxh3.HashSeed(b, r.seed)
	}

	return xxh3.Hash(b)
}

// nodeByHash returns the worker for a hash value using binary search over the ring.
func (r *Ring) nodeByHash(target uint64) types.VirtualWorkerID {
	// First node whose hash is >= target
	idx, _ := slices.BinarySearchFunc(r.nodes, target, func(node virtualNode, t uint64) int {
		if node.hash < t {
			return -1
		}
		if node.hash > t {
			return 1
		}

		return 0
	})

	// Past the last node: wrap around to the first
	if idx >= len(r.nodes) {
		idx = 0
	}

	return r.nodes[idx].worker
}
