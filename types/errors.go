package types

import "errors"

// Sentinel errors for the Stratum library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap them with context using fmt.Errorf("%s: %w", msg, err).
//
// Query paths (ShouldHaveAuthority, WhoShouldHaveAuthority, ...) never return
// errors; they return sentinel values and log instead.

// Layered strategy errors - Public API errors returned by LayeredStrategy.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoadBalancerDisabled is returned by Init when distributed load balancing is disabled.
	ErrLoadBalancerDisabled = errors.New("distributed load balancing is disabled")

	// ErrAlreadyInitialized is returned when Init is called twice.
	ErrAlreadyInitialized = errors.New("strategy already initialized")

	// ErrNotInitialized is returned when an operation requires an initialized strategy.
	ErrNotInitialized = errors.New("strategy not initialized")
)

// Allocator errors - Worker-id range assignment errors.
var (
	// ErrInvalidWorkerRange is returned when a worker-id range is empty or starts at the invalid id.
	ErrInvalidWorkerRange = errors.New("invalid virtual worker id range")

	// ErrInsufficientWorkerIDs is returned when the range is smaller than the total requirement.
	ErrInsufficientWorkerIDs = errors.New("not enough virtual worker ids for layer strategies")
)

// Strategy errors - Sub-strategy construction and configuration errors.
var (
	// ErrUnknownStrategy is returned when a strategy type is not registered.
	ErrUnknownStrategy = errors.New("unknown load balancing strategy")

	// ErrInvalidStrategyConfig is returned when strategy parameters are invalid.
	ErrInvalidStrategyConfig = errors.New("invalid strategy configuration")
)

// Provisioning errors - Worker-id claiming errors.
var (
	// ErrNoWorkersRequired is returned when provisioning a strategy that requires no workers.
	ErrNoWorkersRequired = errors.New("strategy requires no virtual workers")

	// ErrNoAvailableWorkerID is returned when every id in the range is already claimed.
	ErrNoAvailableWorkerID = errors.New("no available virtual worker id")

	// ErrNotClaimed is returned when an operation requires a claimed worker id.
	ErrNotClaimed = errors.New("virtual worker id not claimed")

	// ErrLeaseLost is reported when renewal finds the worker id lease held by another process.
	ErrLeaseLost = errors.New("virtual worker id lease lost")
)
