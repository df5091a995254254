// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/stratum/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// StrategyMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {
	// No-op
}

// RecordAuthorityDecision discards the authority decision metric.
func (n *NopMetrics) RecordAuthorityDecision(_ /* layer */ types.LayerName, _ /* query */, _ /* result */ string) {
	// No-op
}

// RecordMisconfiguration discards the misconfiguration metric.
func (n *NopMetrics) RecordMisconfiguration(_ /* reason */ string) {
	// No-op
}

// ClassifierMetrics implementation

// RecordClassification discards the classification metric.
func (n *NopMetrics) RecordClassification(_ /* cached */ bool) {
	// No-op
}

// AllocatorMetrics implementation

// RecordWorkerAllocation discards the allocation metric.
func (n *NopMetrics) RecordWorkerAllocation(_ /* success */ bool, _ /* required */, _ /* available */ uint32) {
	// No-op
}

// RecordLayerWorkers discards the per-layer worker gauge.
func (n *NopMetrics) RecordLayerWorkers(_ /* layer */ types.LayerName, _ /* count */ uint32) {
	// No-op
}

// ProvisionMetrics implementation

// RecordWorkerClaim discards the claim metric.
func (n *NopMetrics) RecordWorkerClaim(_ /* success */ bool, _ /* attempts */ int) {
	// No-op
}
