package types

// LoadBalanceStrategy is the contract every partitioning sub-strategy implements.
//
// A strategy is constructed, initialized once, handed a contiguous range of virtual
// worker ids sized to at least MinimumRequiredWorkers, and told which id the local
// process owns. After that it answers authority and interest queries.
//
// Implementations must be deterministic: every worker holding the same configuration
// and the same id range derives the same answer for the same entity. Query methods run
// on the simulation's update path and must not block.
type LoadBalanceStrategy interface {
	// Init performs one-time setup after construction.
	Init() error

	// SetLocalVirtualWorkerID records the id owned by the local process.
	SetLocalVirtualWorkerID(id VirtualWorkerID)

	// SetVirtualWorkerIDs hands the strategy its exclusive inclusive id range.
	SetVirtualWorkerIDs(first, last VirtualWorkerID) error

	// MinimumRequiredWorkers returns how many ids the strategy needs.
	MinimumRequiredWorkers() uint32

	// ShouldHaveAuthority reports whether the local worker should be authoritative over e.
	ShouldHaveAuthority(e Entity) bool

	// WhoShouldHaveAuthority returns the worker that should be authoritative over e,
	// or InvalidVirtualWorkerID if the strategy cannot decide.
	WhoShouldHaveAuthority(e Entity) VirtualWorkerID

	// WorkerInterestQueryConstraint describes what the local worker is interested in.
	WorkerInterestQueryConstraint() QueryConstraint

	// WorkerEntityPosition returns where the local worker's own entity is placed.
	WorkerEntityPosition() Vector
}
