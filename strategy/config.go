package strategy

import (
	"math"

	"github.com/arloliu/stratum/types"
)

// Built-in strategy type names.
const (
	TypeGrid           = "grid"
	TypeSingle         = "single"
	TypeConsistentHash = "consistent_hash"
)

// Default parameters for the built-in strategies.
const (
	DefaultWorldWidth   = 1_000_000.0
	DefaultWorldHeight  = 1_000_000.0
	DefaultVirtualNodes = 150
)

// Config selects and parameterizes a sub-strategy.
//
// Only the section matching Type is read; the others are ignored.
//
// Example YAML:
//
//	type: grid
//	grid:
//	  rows: 2
//	  cols: 2
//	  worldWidth: 40000
//	  worldHeight: 40000
//	  interestBorder: 500
type Config struct {
	// Type names the strategy (grid, single, consistent_hash, or a custom registered type).
	Type string `yaml:"type" json:"type"`

	Grid   GridConfig   `yaml:"grid,omitempty" json:"grid,omitzero"`
	Single SingleConfig `yaml:"single,omitempty" json:"single,omitzero"`
	Hash   HashConfig   `yaml:"hash,omitempty" json:"hash,omitzero"`
}

// GridConfig parameterizes Grid.
type GridConfig struct {
	// Rows is the number of cells along Y. 0 means 1.
	Rows uint32 `yaml:"rows" json:"rows"`

	// Cols is the number of cells along X. 0 means 1.
	Cols uint32 `yaml:"cols" json:"cols"`

	// WorldWidth is the X extent of the world. 0 means DefaultWorldWidth.
	WorldWidth float64 `yaml:"worldWidth" json:"worldWidth"`

	// WorldHeight is the Y extent of the world. 0 means DefaultWorldHeight.
	WorldHeight float64 `yaml:"worldHeight" json:"worldHeight"`

	// InterestBorder grows each worker's interest box beyond its cell.
	InterestBorder float64 `yaml:"interestBorder" json:"interestBorder"`
}

// SingleConfig parameterizes Single.
type SingleConfig struct {
	// Position is where the owning worker's own entity is placed.
	Position types.Vector `yaml:"position" json:"position"`
}

// HashConfig parameterizes ConsistentHash.
type HashConfig struct {
	// Workers is how many virtual workers share the layer. 0 means 1.
	Workers uint32 `yaml:"workers" json:"workers"`

	// VirtualNodes per worker on the ring. 0 means DefaultVirtualNodes.
	VirtualNodes int `yaml:"virtualNodes" json:"virtualNodes"`

	// Seed for the hash function (0 for unseeded).
	Seed uint64 `yaml:"seed" json:"seed"`
}

// IsZero reports whether no strategy type was configured.
func (c Config) IsZero() bool {
	return c.Type == ""
}

// Validate checks the parameters of the built-in types.
//
// Custom types are accepted as-is; their factories validate their own sections.
//
// Returns:
//   - error: Wrapped types.ErrInvalidStrategyConfig, or nil
func (c Config) Validate() error {
	switch c.Type {
	case "":
		return invalidConfig("strategy type is empty")
	case TypeGrid:
		g := c.Grid
		if g.WorldWidth < 0 || g.WorldHeight < 0 {
			return invalidConfig("grid world size must not be negative (%gx%g)", g.WorldWidth, g.WorldHeight)
		}
		if g.InterestBorder < 0 {
			return invalidConfig("grid interest border must not be negative (%g)", g.InterestBorder)
		}
		if uint64(max(g.Rows, 1))*uint64(max(g.Cols, 1)) > math.MaxUint32 {
			return invalidConfig("grid has more cells than virtual worker ids (%dx%d)", g.Rows, g.Cols)
		}
	case TypeConsistentHash:
		if c.Hash.VirtualNodes < 0 {
			return invalidConfig("consistent hash virtual nodes must not be negative (%d)", c.Hash.VirtualNodes)
		}
	}

	return nil
}

// GridConfigOf returns a Config for a rows x cols grid over the default world.
func GridConfigOf(rows, cols uint32) Config {
	return Config{Type: TypeGrid, Grid: GridConfig{Rows: rows, Cols: cols}}
}
