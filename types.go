package stratum

import (
	"github.com/arloliu/stratum/internal/allocator"
	"github.com/arloliu/stratum/types"
)

// Re-export types from the types package.
//
// Internal packages depend on `types` rather than on the root package, which
// avoids import cycles while still giving users `stratum.Entity`,
// `stratum.VirtualWorkerID`, and so on.
type (
	State           = types.State
	VirtualWorkerID = types.VirtualWorkerID
	WorkerRange     = types.WorkerRange
	LayerName       = types.LayerName
	EntityID        = types.EntityID
	Vector          = types.Vector
	QueryConstraint = types.QueryConstraint
	BoxConstraint   = types.BoxConstraint
	StaticClass     = types.StaticClass
	ClassTable      = types.ClassTable
	LayerRange      = allocator.LayerRange
)

// Re-export interfaces from the types package for convenience.
type (
	LoadBalanceStrategy = types.LoadBalanceStrategy
	Entity              = types.Entity
	Class               = types.Class
	MetricsCollector    = types.MetricsCollector
	Logger              = types.Logger
)

// Re-export constants from the types package.
const (
	StateUninitialized = types.StateUninitialized
	StateInitializing  = types.StateInitializing
	StateInitialized   = types.StateInitialized
	StateReady         = types.StateReady

	InvalidVirtualWorkerID = types.InvalidVirtualWorkerID
	DefaultLayer           = types.DefaultLayer
	NoLayer                = types.NoLayer
)

// NewClass creates a static class with the given path and parent (nil for a root class).
func NewClass(path string, parent *StaticClass) *StaticClass {
	return types.NewClass(path, parent)
}
