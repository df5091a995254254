package strategy

import (
	"math"

	"github.com/arloliu/stratum/types"
)

// Grid partitions a rectangular world into rows x cols cells, one worker per cell.
//
// The world is centred on the origin: X spans [-WorldWidth/2, WorldWidth/2] and is
// split into Cols columns; Y spans [-WorldHeight/2, WorldHeight/2] and is split into
// Rows rows. Cells are numbered row-major from the south-west corner and cell i is
// owned by the i-th id of the strategy's range. Entities outside the world are
// clamped to the nearest edge cell so every entity always has an owner.
type Grid struct {
	rows           uint32
	cols           uint32
	worldWidth     float64
	worldHeight    float64
	interestBorder float64

	cellWidth  float64
	cellHeight float64

	// cells holds the ids of cell 0 through rows*cols-1; zero until assigned.
	cells   types.WorkerRange
	localID types.VirtualWorkerID
}

var _ types.LoadBalanceStrategy = (*Grid)(nil)

// GridOption configures a Grid strategy.
type GridOption func(*Grid)

// NewGrid creates a new grid strategy.
//
// Without options the grid is 1x1 over the default world: a single worker owns
// everything. This is the fallback used when a layer's configuration is missing.
//
// Parameters:
//   - opts: Optional configuration (WithGridSize, WithWorldSize, WithInterestBorder)
//
// Returns:
//   - *Grid: Grid strategy (call Init before use)
//
// Example:
//
//	grid := strategy.NewGrid(
//	    strategy.WithGridSize(2, 2),
//	    strategy.WithWorldSize(40000, 40000),
//	)
func NewGrid(opts ...GridOption) *Grid {
	g := &Grid{
		rows:        1,
		cols:        1,
		worldWidth:  DefaultWorldWidth,
		worldHeight: DefaultWorldHeight,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// NewGridFromConfig creates a grid strategy from configuration.
//
// Zero rows, cols or world extents fall back to the NewGrid defaults.
//
// Returns:
//   - *Grid: Grid strategy
//   - error: Wrapped types.ErrInvalidStrategyConfig for negative sizes
func NewGridFromConfig(cfg GridConfig) (*Grid, error) {
	if err := (Config{Type: TypeGrid, Grid: cfg}).Validate(); err != nil {
		return nil, err
	}

	opts := []GridOption{WithInterestBorder(cfg.InterestBorder)}
	if cfg.Rows > 0 || cfg.Cols > 0 {
		opts = append(opts, WithGridSize(max(cfg.Rows, 1), max(cfg.Cols, 1)))
	}
	if cfg.WorldWidth > 0 || cfg.WorldHeight > 0 {
		w, h := cfg.WorldWidth, cfg.WorldHeight
		if w == 0 {
			w = DefaultWorldWidth
		}
		if h == 0 {
			h = DefaultWorldHeight
		}
		opts = append(opts, WithWorldSize(w, h))
	}

	return NewGrid(opts...), nil
}

// WithGridSize sets the number of rows and columns.
//
// Parameters:
//   - rows: Cells along Y
//   - cols: Cells along X
//
// Returns:
//   - GridOption: Configuration option
func WithGridSize(rows, cols uint32) GridOption {
	return func(g *Grid) {
		g.rows = rows
		g.cols = cols
	}
}

// WithWorldSize sets the world extents.
func WithWorldSize(width, height float64) GridOption {
	return func(g *Grid) {
		g.worldWidth = width
		g.worldHeight = height
	}
}

// WithInterestBorder sets how far interest extends past the local cell.
func WithInterestBorder(border float64) GridOption {
	return func(g *Grid) {
		g.interestBorder = border
	}
}

// Init computes cell geometry.
//
// Returns:
//   - error: Wrapped types.ErrInvalidStrategyConfig for a degenerate grid
func (g *Grid) Init() error {
	if g.rows == 0 || g.cols == 0 {
		return invalidConfig("grid must have at least one row and column (%dx%d)", g.rows, g.cols)
	}
	if uint64(g.rows)*uint64(g.cols) > math.MaxUint32 {
		return invalidConfig("grid has more cells than virtual worker ids (%dx%d)", g.rows, g.cols)
	}
	if g.worldWidth <= 0 || g.worldHeight <= 0 {
		return invalidConfig("grid world size must be positive (%gx%g)", g.worldWidth, g.worldHeight)
	}
	if g.interestBorder < 0 {
		return invalidConfig("grid interest border must not be negative (%g)", g.interestBorder)
	}

	g.cellWidth = g.worldWidth / float64(g.cols)
	g.cellHeight = g.worldHeight / float64(g.rows)

	return nil
}

// SetLocalVirtualWorkerID records the id owned by the local process.
func (g *Grid) SetLocalVirtualWorkerID(id types.VirtualWorkerID) {
	g.localID = id
}

// SetVirtualWorkerIDs assigns one id per cell, starting at first.
//
// Ids beyond rows*cols are left unused.
func (g *Grid) SetVirtualWorkerIDs(first, last types.VirtualWorkerID) error {
	need := g.MinimumRequiredWorkers()
	if err := checkRange(first, last, need); err != nil {
		return err
	}

	g.cells = types.WorkerRange{First: first, Last: first + types.VirtualWorkerID(need) - 1}

	return nil
}

// MinimumRequiredWorkers returns rows*cols, saturated at math.MaxUint32.
//
// Init rejects grids whose cell count does not fit, so saturation is only visible
// on an uninitialized grid.
func (g *Grid) MinimumRequiredWorkers() uint32 {
	return uint32(min(uint64(g.rows)*uint64(g.cols), math.MaxUint32))
}

// ShouldHaveAuthority reports whether the local worker owns the cell containing e.
func (g *Grid) ShouldHaveAuthority(e types.Entity) bool {
	if e == nil || !g.localID.IsValid() {
		return false
	}

	return g.WhoShouldHaveAuthority(e) == g.localID
}

// WhoShouldHaveAuthority returns the owner of the cell containing e.
//
// Returns types.InvalidVirtualWorkerID before ids are assigned or for a nil entity.
func (g *Grid) WhoShouldHaveAuthority(e types.Entity) types.VirtualWorkerID {
	if e == nil || g.cells.Len() == 0 {
		return types.InvalidVirtualWorkerID
	}

	return g.ownerOf(g.cellIndex(e.Position()))
}

// WorkerInterestQueryConstraint returns the local cell grown by the interest border.
//
// The box is unbounded in Z. The constraint is empty when the local worker owns no cell.
func (g *Grid) WorkerInterestQueryConstraint() types.QueryConstraint {
	idx, ok := g.localCell()
	if !ok {
		return types.QueryConstraint{}
	}

	return types.QueryConstraint{
		Box: &types.BoxConstraint{
			Center: g.cellCenter(idx),
			EdgeLength: types.Vector{
				X: g.cellWidth + 2*g.interestBorder,
				Y: g.cellHeight + 2*g.interestBorder,
				Z: math.MaxFloat64,
			},
		},
	}
}

// WorkerEntityPosition returns the centre of the local cell, or the origin.
func (g *Grid) WorkerEntityPosition() types.Vector {
	idx, ok := g.localCell()
	if !ok {
		return types.ZeroVector
	}

	return g.cellCenter(idx)
}

// CellOf returns the worker owning the cell that contains pos.
//
// Returns types.InvalidVirtualWorkerID before ids are assigned.
func (g *Grid) CellOf(pos types.Vector) types.VirtualWorkerID {
	if g.cells.Len() == 0 {
		return types.InvalidVirtualWorkerID
	}

	return g.ownerOf(g.cellIndex(pos))
}

func (g *Grid) ownerOf(idx int) types.VirtualWorkerID {
	return g.cells.First + types.VirtualWorkerID(idx)
}

func (g *Grid) localCell() (int, bool) {
	if !g.localID.IsValid() || !g.cells.Contains(g.localID) {
		return 0, false
	}

	return int(g.localID - g.cells.First), true
}

// cellIndex maps a position to a row-major cell index, clamping to the world edge.
func (g *Grid) cellIndex(pos types.Vector) int {
	col := axisIndex(pos.X+g.worldWidth/2, g.cellWidth, g.cols)
	row := axisIndex(pos.Y+g.worldHeight/2, g.cellHeight, g.rows)

	return row*int(g.cols) + col
}

func (g *Grid) cellCenter(idx int) types.Vector {
	row := idx / int(g.cols)
	col := idx % int(g.cols)

	return types.Vector{
		X: -g.worldWidth/2 + (float64(col)+0.5)*g.cellWidth,
		Y: -g.worldHeight/2 + (float64(row)+0.5)*g.cellHeight,
	}
}

func axisIndex(offset, cell float64, count uint32) int {
	if cell <= 0 || math.IsNaN(offset) {
		return 0
	}

	f := math.Floor(offset / cell)
	if f < 0 {
		return 0
	}
	if f >= float64(count) {
		return int(count) - 1
	}

	return int(f)
}
