package strategy

import (
	"github.com/arloliu/stratum/internal/hash"
	"github.com/arloliu/stratum/types"
)

// ConsistentHash assigns entities to workers by hashing entity ids onto a ring.
//
// Position plays no part in the decision, so authority never migrates while an
// entity moves. Growing the layer by one worker moves only the entities that land
// on the new worker's virtual nodes.
type ConsistentHash struct {
	workers      uint32
	virtualNodes int
	hashSeed     uint64

	ring    *hash.Ring
	localID types.VirtualWorkerID
}

var _ types.LoadBalanceStrategy = (*ConsistentHash)(nil)

// ConsistentHashOption configures a ConsistentHash strategy.
type ConsistentHashOption func(*ConsistentHash)

// NewConsistentHash creates a new consistent hash strategy.
//
// Parameters:
//   - opts: Optional configuration (WithWorkers, WithVirtualNodes, WithHashSeed)
//
// Returns:
//   - *ConsistentHash: Initialized consistent hash strategy
//
// Example:
//
//	ch := strategy.NewConsistentHash(
//	    strategy.WithWorkers(4),
//	    strategy.WithVirtualNodes(300),
//	)
func NewConsistentHash(opts ...ConsistentHashOption) *ConsistentHash {
	ch := &ConsistentHash{
		workers:      1,
		virtualNodes: DefaultVirtualNodes,
	}

	for _, opt := range opts {
		opt(ch)
	}

	return ch
}

// NewConsistentHashFromConfig creates a consistent hash strategy from configuration.
func NewConsistentHashFromConfig(cfg HashConfig) (*ConsistentHash, error) {
	if err := (Config{Type: TypeConsistentHash, Hash: cfg}).Validate(); err != nil {
		return nil, err
	}

	opts := []ConsistentHashOption{WithHashSeed(cfg.Seed)}
	if cfg.Workers > 0 {
		opts = append(opts, WithWorkers(cfg.Workers))
	}
	if cfg.VirtualNodes > 0 {
		opts = append(opts, WithVirtualNodes(cfg.VirtualNodes))
	}

	return NewConsistentHash(opts...), nil
}

// WithWorkers sets how many virtual workers share the layer.
func WithWorkers(n uint32) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.workers = n
	}
}

// WithVirtualNodes sets the number of virtual nodes per worker.
//
// Higher values provide better distribution but increase memory usage.
// Recommended range: 100-300 (default: 150).
//
// Parameters:
//   - nodes: Number of virtual nodes per worker
//
// Returns:
//   - ConsistentHashOption: Configuration option
func WithVirtualNodes(nodes int) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.virtualNodes = nodes
	}
}

// WithHashSeed sets a custom hash seed for consistent hashing.
func WithHashSeed(seed uint64) ConsistentHashOption {
	return func(ch *ConsistentHash) {
		ch.hashSeed = seed
	}
}

// Init validates the worker and virtual node counts.
func (ch *ConsistentHash) Init() error {
	if ch.workers == 0 {
		return invalidConfig("consistent hash needs at least one worker")
	}
	if ch.virtualNodes < 1 {
		return invalidConfig("consistent hash needs at least one virtual node per worker (%d)", ch.virtualNodes)
	}

	return nil
}

// SetLocalVirtualWorkerID records the id owned by the local process.
func (ch *ConsistentHash) SetLocalVirtualWorkerID(id types.VirtualWorkerID) {
	ch.localID = id
}

// SetVirtualWorkerIDs builds the ring from the first Workers ids of the range.
func (ch *ConsistentHash) SetVirtualWorkerIDs(first, last types.VirtualWorkerID) error {
	if err := checkRange(first, last, ch.workers); err != nil {
		return err
	}

	ids := types.WorkerRange{First: first, Last: first + types.VirtualWorkerID(ch.workers) - 1}.IDs()
	ch.ring = hash.NewRing(ids, ch.virtualNodes, ch.hashSeed)

	return nil
}

// MinimumRequiredWorkers returns the configured worker count.
func (ch *ConsistentHash) MinimumRequiredWorkers() uint32 {
	return ch.workers
}

// ShouldHaveAuthority reports whether e hashes to the local worker.
func (ch *ConsistentHash) ShouldHaveAuthority(e types.Entity) bool {
	if e == nil || !ch.localID.IsValid() {
		return false
	}

	return ch.WhoShouldHaveAuthority(e) == ch.localID
}

// WhoShouldHaveAuthority returns the ring owner of e's id.
func (ch *ConsistentHash) WhoShouldHaveAuthority(e types.Entity) types.VirtualWorkerID {
	if e == nil || ch.ring == nil {
		return types.InvalidVirtualWorkerID
	}

	return ch.ring.NodeForEntity(e.ID())
}

// WorkerInterestQueryConstraint returns the empty constraint.
func (ch *ConsistentHash) WorkerInterestQueryConstraint() types.QueryConstraint {
	return types.QueryConstraint{}
}

// WorkerEntityPosition returns the origin.
func (ch *ConsistentHash) WorkerEntityPosition() types.Vector {
	return types.ZeroVector
}
