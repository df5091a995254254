package hash

import (
	"fmt"
	"testing"

	"github.com/arloliu/stratum/types"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	workers := []types.VirtualWorkerID{3, 4, 5}
	ring := NewRing(workers, 100, 0)

	require.NotNil(t, ring)
	require.Equal(t, 300, ring.Size()) // 3 workers * 100 virtual nodes
	require.Equal(t, workers, ring.Workers())
}

func TestNewRing_IgnoresDuplicatesAndInvalid(t *testing.T) {
	ring := NewRing([]types.VirtualWorkerID{2, types.InvalidVirtualWorkerID, 2, 7}, 10, 0)

	require.Equal(t, []types.VirtualWorkerID{2, 7}, ring.Workers())
	require.Equal(t, 20, ring.Size())
}

func TestRing_NodeForEntity(t *testing.T) {
	t.Run("assigns entities consistently", func(t *testing.T) {
		workers := []types.VirtualWorkerID{1, 2}
		ring := NewRing(workers, 150, 0)
		other := NewRing(workers, 150, 0)

		for _, id := range []types.EntityID{1, 42, 1 << 40} {
			owner := ring.NodeForEntity(id)
			require.Equal(t, owner, ring.NodeForEntity(id), "entity %d not consistent", id)
			require.Equal(t, owner, other.NodeForEntity(id), "independent rings disagree on entity %d", id)
			require.Contains(t, workers, owner)
		}
	})

	t.Run("distributes entities across workers", func(t *testing.T) {
		workers := []types.VirtualWorkerID{10, 11, 12}
		ring := NewRing(workers, 150, 0)

		counts := make(map[types.VirtualWorkerID]int)
		for i := range 9000 {
			counts[ring.NodeForEntity(types.EntityID(i))]++
		}

		// Each worker should get roughly 1/3 of entities (allow 25% variance)
		expectedPerWorker := 9000 / len(workers)
		tolerance := expectedPerWorker * 25 / 100

		for _, w := range workers {
			count := counts[w]
			require.GreaterOrEqual(t, count, expectedPerWorker-tolerance, "worker %d under-assigned", w)
			require.LessOrEqual(t, count, expectedPerWorker+tolerance, "worker %d over-assigned", w)
		}
	})

	t.Run("returns invalid id for empty ring", func(t *testing.T) {
		ring := NewRing(nil, 150, 0)
		require.Equal(t, types.InvalidVirtualWorkerID, ring.NodeForEntity(1))
		require.Equal(t, types.InvalidVirtualWorkerID, ring.NodeForKey("any-key"))
	})
}

func TestRing_MinimalMovementOnScale(t *testing.T) {
	before := NewRing([]types.VirtualWorkerID{1, 2, 3, 4}, 150, 0)
	after := NewRing([]types.VirtualWorkerID{1, 2, 3, 4, 5}, 150, 0)

	moved := 0
	for i := range 5000 {
		id := types.EntityID(i)
		if before.NodeForEntity(id) != after.NodeForEntity(id) {
			moved++
			require.Equal(t, types.VirtualWorkerID(5), after.NodeForEntity(id), "entities only move to the new worker")
		}
	}

	// Roughly 1/5 should move; anything under 35% shows consistent hashing at work
	require.Less(t, moved, 5000*35/100)
}

func TestRing_Seed(t *testing.T) {
	workers := []types.VirtualWorkerID{1, 2, 3}
	unseeded := NewRing(workers, 50, 0)
	seeded := NewRing(workers, 50, 99)

	differs := false
	for i := range 200 {
		key := fmt.Sprintf("entity-%d", i)
		if unseeded.NodeForKey(key) != seeded.NodeForKey(key) {
			differs = true
			break
		}
	}
	require.True(t, differs, "seed should change placement")
}

func BenchmarkRing_NodeForEntity(b *testing.B) {
	workers := make([]types.VirtualWorkerID, 64)
	for i := range workers {
		workers[i] = types.VirtualWorkerID(i + 1)
	}
	ring := NewRing(workers, 150, 0)

	var id types.EntityID
	for b.Loop() {
		id++
		_ = ring.NodeForEntity(id)
	}
}
