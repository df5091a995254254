package strategy

import "github.com/arloliu/stratum/types"

// Single gives one worker authority over every entity of its layer.
type Single struct {
	position types.Vector
	owner    types.VirtualWorkerID
	localID  types.VirtualWorkerID
}

var _ types.LoadBalanceStrategy = (*Single)(nil)

// SingleOption configures a Single strategy.
type SingleOption func(*Single)

// NewSingle creates a single-owner strategy.
//
// Parameters:
//   - opts: Optional configuration (WithPosition)
//
// Returns:
//   - *Single: Single-owner strategy
func NewSingle(opts ...SingleOption) *Single {
	s := &Single{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPosition sets where the owning worker's entity is placed.
func WithPosition(pos types.Vector) SingleOption {
	return func(s *Single) {
		s.position = pos
	}
}

// Init is a no-op.
func (s *Single) Init() error {
	return nil
}

// SetLocalVirtualWorkerID records the id owned by the local process.
func (s *Single) SetLocalVirtualWorkerID(id types.VirtualWorkerID) {
	s.localID = id
}

// SetVirtualWorkerIDs makes first the owner of the layer.
func (s *Single) SetVirtualWorkerIDs(first, last types.VirtualWorkerID) error {
	if err := checkRange(first, last, 1); err != nil {
		return err
	}
	s.owner = first

	return nil
}

// MinimumRequiredWorkers returns 1.
func (s *Single) MinimumRequiredWorkers() uint32 {
	return 1
}

// ShouldHaveAuthority reports whether the local worker is the owner.
func (s *Single) ShouldHaveAuthority(e types.Entity) bool {
	return e != nil && s.owner.IsValid() && s.localID == s.owner
}

// WhoShouldHaveAuthority returns the owner, or types.InvalidVirtualWorkerID before assignment.
func (s *Single) WhoShouldHaveAuthority(e types.Entity) types.VirtualWorkerID {
	if e == nil {
		return types.InvalidVirtualWorkerID
	}

	return s.owner
}

// WorkerInterestQueryConstraint returns the empty constraint.
func (s *Single) WorkerInterestQueryConstraint() types.QueryConstraint {
	return types.QueryConstraint{}
}

// WorkerEntityPosition returns the configured position.
func (s *Single) WorkerEntityPosition() types.Vector {
	return s.position
}
