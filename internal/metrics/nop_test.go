package metrics

import (
	"testing"

	"github.com/arloliu/stratum/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordStateTransition(types.StateUninitialized, types.StateReady)
		metrics.RecordStateTransition(types.State(999), types.State(1000))
		metrics.RecordAuthorityDecision("Physics", "should", "granted")
		metrics.RecordAuthorityDecision("", "", "")
		metrics.RecordMisconfiguration("missing_world")
		metrics.RecordClassification(true)
		metrics.RecordWorkerAllocation(false, 5, 4)
		metrics.RecordLayerWorkers(types.DefaultLayer, 0)
		metrics.RecordWorkerClaim(true, 3)
	})
}
