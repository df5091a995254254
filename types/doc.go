// Package types provides core type definitions and interfaces for the Stratum library.
//
// This package contains shared types that are used across multiple packages in the
// Stratum library. By keeping these types in a separate package, we avoid import cycles
// between the root stratum package, the strategy package, and internal implementations.
//
// Key types:
//   - VirtualWorkerID: Logical worker identity, independent of connection identity
//   - LayerName: Named partition of simulation responsibility
//   - Class / Entity: Opaque classifiable identity of simulated objects
//   - LoadBalanceStrategy: Contract every partitioning sub-strategy implements
//   - QueryConstraint: Interest descriptor consumed by the transport layer
//   - State: Layered strategy lifecycle state
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
