package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Query-path methods are called on the simulation update path and must be cheap.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	StrategyMetrics
	ClassifierMetrics
	AllocatorMetrics
	ProvisionMetrics
}

// StrategyMetrics defines metrics for layered strategy operations.
type StrategyMetrics interface {
	// RecordStateTransition records a layered strategy state transition.
	RecordStateTransition(from, to State)

	// RecordAuthorityDecision records the outcome of an authority query.
	//
	// Parameters:
	//   - layer: Layer the entity resolved to, or the local layer for "interest" and
	//     "position" ("" when unresolved)
	//   - query: Query kind ("should", "who", "interest", "position")
	//   - result: Outcome. "should" records "granted", "denied" or "other_layer";
	//     "who", "interest" and "position" record "resolved". Any query may record
	//     "not_ready". "should" and "who" may record "nil_entity" or "no_strategy";
	//     "interest" and "position" may record "no_local_layer".
	RecordAuthorityDecision(layer LayerName, query string, result string)

	// RecordMisconfiguration records a configuration problem handled by degrading.
	//
	// Parameters:
	//   - reason: One of "missing_world", "missing_world_strategy", "empty_layer_name",
	//     "reserved_layer_name", "duplicate_layer", "layer_strategy", "layer_strategy_init",
	//     "default_strategy_init", "default_strategy" or "worker_requirement_overflow"
	RecordMisconfiguration(reason string)
}

// ClassifierMetrics defines metrics for class → layer resolution.
type ClassifierMetrics interface {
	// RecordClassification records a layer resolution.
	//
	// Parameters:
	//   - cached: true if answered directly from the memo without walking ancestors
	RecordClassification(cached bool)
}

// AllocatorMetrics defines metrics for worker-id range assignment.
type AllocatorMetrics interface {
	// RecordWorkerAllocation records an allocation attempt.
	//
	// Parameters:
	//   - success: true if every layer received its range
	//   - required: Total ids required by all layers
	//   - available: Size of the offered range
	RecordWorkerAllocation(success bool, required, available uint32)

	// RecordLayerWorkers sets the number of ids assigned to a layer (gauge metric).
	RecordLayerWorkers(layer LayerName, count uint32)
}

// ProvisionMetrics defines metrics for local worker-id claiming.
type ProvisionMetrics interface {
	// RecordWorkerClaim records a claim attempt.
	//
	// Parameters:
	//   - success: true if an id was claimed
	//   - attempts: Number of ids probed
	RecordWorkerClaim(success bool, attempts int)
}
