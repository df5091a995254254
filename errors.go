package stratum

import "github.com/arloliu/stratum/types"

// Re-export sentinel errors from the types package.
//
// Callers can match any error returned by this module with errors.Is against
// these values without importing the types package.
var (
	ErrInvalidConfig         = types.ErrInvalidConfig
	ErrLoadBalancerDisabled  = types.ErrLoadBalancerDisabled
	ErrAlreadyInitialized    = types.ErrAlreadyInitialized
	ErrNotInitialized        = types.ErrNotInitialized
	ErrInvalidWorkerRange    = types.ErrInvalidWorkerRange
	ErrInsufficientWorkerIDs = types.ErrInsufficientWorkerIDs
	ErrUnknownStrategy       = types.ErrUnknownStrategy
	ErrInvalidStrategyConfig = types.ErrInvalidStrategyConfig
	ErrNoWorkersRequired     = types.ErrNoWorkersRequired
	ErrNoAvailableWorkerID   = types.ErrNoAvailableWorkerID
	ErrNotClaimed            = types.ErrNotClaimed
	ErrLeaseLost             = types.ErrLeaseLost
)
