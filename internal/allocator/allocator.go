// Package allocator carves a contiguous range of virtual worker ids into per-layer
// sub-ranges.
//
// Layers are visited in registry order and each receives exactly as many ids as its
// strategy's MinimumRequiredWorkers. Registry order decides which concrete ids a layer
// gets (not how many), so every worker holding the same ordered configuration derives
// the same mapping.
//
// Assignment is all-or-nothing: every range is planned before any strategy is told
// about its ids. When the offered range is too small nothing is committed.
package allocator

import (
	"fmt"
	"math"
	"sort"

	"github.com/arloliu/stratum/types"
)

// Layer pairs a layer name with the strategy that will receive its ids.
type Layer struct {
	Name     types.LayerName
	Strategy types.LoadBalanceStrategy
}

// LayerRange is the inclusive id range handed to one layer.
type LayerRange struct {
	Layer types.LayerName   `json:"layer"`
	Range types.WorkerRange `json:"range"`
}

// Allocation is the result of a successful Assign.
type Allocation struct {
	offered types.WorkerRange
	ranges  []LayerRange
	claimed uint32
}

// Plan computes per-layer ranges without touching any strategy.
//
// Parameters:
//   - first: First id of the offered range (must not be the invalid id)
//   - last: Last id of the offered range (inclusive, >= first)
//   - layers: Layers in registry order
//
// Returns:
//   - []LayerRange: One entry per layer with a non-zero requirement, in order
//   - uint32: Total ids required by all layers (also on failure), saturated at math.MaxUint32
//   - error: ErrInvalidWorkerRange or ErrInsufficientWorkerIDs (wrapped with the failing layer)
func Plan(first, last types.VirtualWorkerID, layers []Layer) ([]LayerRange, uint32, error) {
	if first == types.InvalidVirtualWorkerID || last < first {
		return nil, 0, fmt.Errorf("%w: [%d, %d]", types.ErrInvalidWorkerRange, first, last)
	}

	var total uint64
	for _, l := range layers {
		total += uint64(l.Strategy.MinimumRequiredWorkers())
	}
	required := uint32(min(total, math.MaxUint32))

	ranges := make([]LayerRange, 0, len(layers))
	next := uint64(first)

	for _, l := range layers {
		k := uint64(l.Strategy.MinimumRequiredWorkers())
		if k == 0 {
			continue
		}

		end := next + k - 1
		if end > uint64(last) {
			return nil, required, fmt.Errorf("%w: layer %q needs ids [%d, %d] but range ends at %d",
				types.ErrInsufficientWorkerIDs, l.Name, next, end, last)
		}

		ranges = append(ranges, LayerRange{
			Layer: l.Name,
			Range: types.WorkerRange{First: types.VirtualWorkerID(next), Last: types.VirtualWorkerID(end)},
		})
		next = end + 1
	}

	return ranges, required, nil
}

// Assign plans ranges for every layer and, only if all fit, hands each strategy its range.
//
// Parameters:
//   - first: First id of the offered range
//   - last: Last id of the offered range (inclusive)
//   - layers: Layers in registry order
//
// Returns:
//   - *Allocation: Committed ranges and the reverse id → layer lookup
//   - error: Planning error, or the first error returned by a strategy's SetVirtualWorkerIDs
//
// Example:
//
//	// Physics needs 4, Default needs 1; offered [1, 5]
//	alloc, err := allocator.Assign(1, 5, layers)
//	// Physics → [1, 4], Default → [5, 5]
func Assign(first, last types.VirtualWorkerID, layers []Layer) (*Allocation, error) {
	ranges, required, err := Plan(first, last, layers)
	if err != nil {
		return nil, err
	}

	byName := make(map[types.LayerName]types.LoadBalanceStrategy, len(layers))
	for _, l := range layers {
		byName[l.Name] = l.Strategy
	}

	alloc := &Allocation{
		offered: types.WorkerRange{First: first, Last: last},
		ranges:  ranges,
		claimed: required,
	}

	for _, lr := range ranges {
		if err := byName[lr.Layer].SetVirtualWorkerIDs(lr.Range.First, lr.Range.Last); err != nil {
			return nil, fmt.Errorf("layer %q rejected ids [%d, %d]: %w", lr.Layer, lr.Range.First, lr.Range.Last, err)
		}
	}

	return alloc, nil
}

// Ranges returns the committed layer ranges in registry order.
func (a *Allocation) Ranges() []LayerRange {
	return append([]LayerRange(nil), a.ranges...)
}

// LayerFor returns the layer owning id.
//
// Returns:
//   - types.LayerName: Owning layer (NoLayer if unassigned)
//   - bool: true if id was assigned to a layer
func (a *Allocation) LayerFor(id types.VirtualWorkerID) (types.LayerName, bool) {
	// ranges are ascending and disjoint
	i := sort.Search(len(a.ranges), func(i int) bool { return a.ranges[i].Range.Last >= id })
	if i < len(a.ranges) && a.ranges[i].Range.Contains(id) {
		return a.ranges[i].Layer, true
	}

	return types.NoLayer, false
}

// RangeFor returns the range assigned to layer.
func (a *Allocation) RangeFor(layer types.LayerName) (types.WorkerRange, bool) {
	for _, lr := range a.ranges {
		if lr.Layer == layer {
			return lr.Range, true
		}
	}

	return types.WorkerRange{}, false
}

// Offered returns the full range that was offered to Assign.
func (a *Allocation) Offered() types.WorkerRange {
	return a.offered
}

// Claimed returns the number of ids handed to layers.
func (a *Allocation) Claimed() uint32 {
	return a.claimed
}

// Spare returns the number of offered ids left unassigned.
func (a *Allocation) Spare() uint32 {
	return a.offered.Len() - a.claimed
}
