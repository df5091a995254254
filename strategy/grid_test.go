package strategy

import (
	"math"
	"testing"

	stratumtest "github.com/arloliu/stratum/testing"
	"github.com/arloliu/stratum/types"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, border float64) *Grid {
	t.Helper()

	g := NewGrid(WithGridSize(2, 2), WithWorldSize(400, 400), WithInterestBorder(border))
	require.NoError(t, g.Init())
	require.NoError(t, g.SetVirtualWorkerIDs(5, 8))

	return g
}

func TestGrid_Defaults(t *testing.T) {
	g := NewGrid()
	require.NoError(t, g.Init())
	require.Equal(t, uint32(1), g.MinimumRequiredWorkers())

	require.NoError(t, g.SetVirtualWorkerIDs(3, 3))
	e := stratumtest.NewEntity(1, nil, types.Vector{X: 123456, Y: -98765})
	require.Equal(t, types.VirtualWorkerID(3), g.WhoShouldHaveAuthority(e))
}

func TestGrid_WhoShouldHaveAuthority(t *testing.T) {
	g := newTestGrid(t, 0)

	tests := []struct {
		name string
		pos  types.Vector
		want types.VirtualWorkerID
	}{
		{"south-west cell", types.Vector{X: -100, Y: -100}, 5},
		{"south-east cell", types.Vector{X: 100, Y: -100}, 6},
		{"north-west cell", types.Vector{X: -100, Y: 100}, 7},
		{"north-east cell", types.Vector{X: 100, Y: 100}, 8},
		{"origin belongs to upper cell", types.Vector{}, 8},
		{"outside world clamps to edge", types.Vector{X: -1000, Y: 1000}, 7},
		{"far outside world clamps to corner", types.Vector{X: 1e300, Y: -1e300}, 6},
		{"z is ignored", types.Vector{X: -100, Y: -100, Z: 5000}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := stratumtest.NewEntity(1, nil, tt.pos)
			require.Equal(t, tt.want, g.WhoShouldHaveAuthority(e))
			require.Equal(t, tt.want, g.CellOf(tt.pos))
		})
	}
}

func TestGrid_ShouldHaveAuthority(t *testing.T) {
	g := newTestGrid(t, 0)
	e := stratumtest.NewEntity(1, nil, types.Vector{X: 100, Y: -100})

	require.False(t, g.ShouldHaveAuthority(e), "no local id yet")

	g.SetLocalVirtualWorkerID(6)
	require.True(t, g.ShouldHaveAuthority(e))

	e.MoveTo(types.Vector{X: -100, Y: -100})
	require.False(t, g.ShouldHaveAuthority(e))

	require.False(t, g.ShouldHaveAuthority(nil))
	require.Equal(t, types.InvalidVirtualWorkerID, g.WhoShouldHaveAuthority(nil))
}

func TestGrid_BeforeAssignment(t *testing.T) {
	g := NewGrid(WithGridSize(2, 2))
	require.NoError(t, g.Init())
	g.SetLocalVirtualWorkerID(1)

	e := stratumtest.NewEntity(1, nil, types.ZeroVector)
	require.Equal(t, types.InvalidVirtualWorkerID, g.WhoShouldHaveAuthority(e))
	require.False(t, g.ShouldHaveAuthority(e))
	require.True(t, g.WorkerInterestQueryConstraint().IsEmpty())
	require.Equal(t, types.ZeroVector, g.WorkerEntityPosition())
}

func TestGrid_Interest(t *testing.T) {
	g := newTestGrid(t, 50)
	g.SetLocalVirtualWorkerID(6)

	q := g.WorkerInterestQueryConstraint()
	require.NotNil(t, q.Box)
	require.Equal(t, types.Vector{X: 100, Y: -100}, q.Box.Center)
	require.InDelta(t, 300.0, q.Box.EdgeLength.X, 1e-9)
	require.InDelta(t, 300.0, q.Box.EdgeLength.Y, 1e-9)

	// Border reaches 50 units into the neighbouring cells
	require.True(t, q.Box.Contains(types.Vector{X: -40, Y: -100}))
	require.True(t, q.Box.Contains(types.Vector{X: 100, Y: 40, Z: 1e9}))
	require.False(t, q.Box.Contains(types.Vector{X: -60, Y: -100}))

	require.Equal(t, types.Vector{X: 100, Y: -100}, g.WorkerEntityPosition())
}

func TestGrid_LocalIDOutsideRange(t *testing.T) {
	g := newTestGrid(t, 0)
	g.SetLocalVirtualWorkerID(2)

	require.True(t, g.WorkerInterestQueryConstraint().IsEmpty())
	require.Equal(t, types.ZeroVector, g.WorkerEntityPosition())
}

func TestGrid_SetVirtualWorkerIDs(t *testing.T) {
	g := NewGrid(WithGridSize(2, 3))
	require.NoError(t, g.Init())
	require.Equal(t, uint32(6), g.MinimumRequiredWorkers())

	err := g.SetVirtualWorkerIDs(1, 5)
	require.ErrorIs(t, err, types.ErrInsufficientWorkerIDs)

	err = g.SetVirtualWorkerIDs(0, 10)
	require.ErrorIs(t, err, types.ErrInvalidWorkerRange)

	err = g.SetVirtualWorkerIDs(9, 4)
	require.ErrorIs(t, err, types.ErrInvalidWorkerRange)

	// Extra ids are ignored
	require.NoError(t, g.SetVirtualWorkerIDs(10, 20))
	e := stratumtest.NewEntity(1, nil, types.Vector{X: 1e9, Y: 1e9})
	require.Equal(t, types.VirtualWorkerID(15), g.WhoShouldHaveAuthority(e))
}

func TestGrid_InitErrors(t *testing.T) {
	tests := []struct {
		name string
		grid *Grid
	}{
		{"zero rows", NewGrid(WithGridSize(0, 2))},
		{"zero cols", NewGrid(WithGridSize(2, 0))},
		{"zero world", NewGrid(WithWorldSize(0, 100))},
		{"negative border", NewGrid(WithInterestBorder(-1))},
		{"cell count wraps to zero", NewGrid(WithGridSize(65536, 65536))},
		{"cell count exceeds id space", NewGrid(WithGridSize(65537, 65537))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.grid.Init(), types.ErrInvalidStrategyConfig)
		})
	}
}

func TestGrid_LargestGrid(t *testing.T) {
	// 65535 * 65537 == math.MaxUint32
	g := NewGrid(WithGridSize(65535, 65537), WithWorldSize(65537, 65535))
	require.NoError(t, g.Init())
	require.Equal(t, uint32(math.MaxUint32), g.MinimumRequiredWorkers())

	require.NoError(t, g.SetVirtualWorkerIDs(1, math.MaxUint32))

	sw := stratumtest.NewEntity(1, nil, types.Vector{X: -1e9, Y: -1e9})
	ne := stratumtest.NewEntity(2, nil, types.Vector{X: 1e9, Y: 1e9})
	require.Equal(t, types.VirtualWorkerID(1), g.WhoShouldHaveAuthority(sw))
	require.Equal(t, types.VirtualWorkerID(math.MaxUint32), g.WhoShouldHaveAuthority(ne))

	g.SetLocalVirtualWorkerID(math.MaxUint32)
	require.True(t, g.ShouldHaveAuthority(ne))
	require.False(t, g.WorkerInterestQueryConstraint().IsEmpty())
}

func TestGrid_MinimumRequiredWorkersSaturates(t *testing.T) {
	g := NewGrid(WithGridSize(65536, 65536))
	require.Equal(t, uint32(math.MaxUint32), g.MinimumRequiredWorkers())
	require.Error(t, g.Init())
}

func TestNewGridFromConfig(t *testing.T) {
	g, err := NewGridFromConfig(GridConfig{Rows: 3})
	require.NoError(t, err)
	require.NoError(t, g.Init())
	require.Equal(t, uint32(3), g.MinimumRequiredWorkers())

	g, err = NewGridFromConfig(GridConfig{})
	require.NoError(t, err)
	require.Equal(t, uint32(1), g.MinimumRequiredWorkers())

	_, err = NewGridFromConfig(GridConfig{WorldWidth: -1})
	require.ErrorIs(t, err, types.ErrInvalidStrategyConfig)
}

// Every worker computing authority independently must agree on a single owner.
func TestGrid_AgreementAcrossWorkers(t *testing.T) {
	grids := make([]*Grid, 4)
	for i := range grids {
		grids[i] = newTestGrid(t, 25)
		grids[i].SetLocalVirtualWorkerID(types.VirtualWorkerID(5 + i))
	}

	for x := -250.0; x <= 250; x += 17 {
		for y := -250.0; y <= 250; y += 19 {
			e := stratumtest.NewEntity(1, nil, types.Vector{X: x, Y: y})
			owners := 0
			for _, g := range grids {
				if g.ShouldHaveAuthority(e) {
					owners++
				}
			}
			require.Equal(t, 1, owners, "position (%g, %g)", x, y)
		}
	}
}
