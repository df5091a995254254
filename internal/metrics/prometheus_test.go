package metrics

import (
	"testing"

	"github.com/arloliu/stratum/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families, "nothing registered before first use")
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordStateTransition(types.StateInitialized, types.StateReady)
	p.RecordAuthorityDecision("Physics", "should", "granted")
	p.RecordAuthorityDecision("Physics", "should", "granted")
	p.RecordAuthorityDecision(types.DefaultLayer, "who", "assigned")
	p.RecordMisconfiguration("missing_world")
	p.RecordClassification(true)
	p.RecordClassification(false)
	p.RecordClassification(false)
	p.RecordWorkerAllocation(false, 5, 4)
	p.RecordLayerWorkers("Physics", 4)
	p.RecordWorkerClaim(true, 2)

	require.InDelta(t, 1, testutil.ToFloat64(p.stateTransitions.WithLabelValues("Initialized", "Ready")), 0)
	require.InDelta(t, float64(types.StateReady), testutil.ToFloat64(p.currentState), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.authorityDecisions.WithLabelValues("Physics", "should", "granted")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.authorityDecisions.WithLabelValues("Default", "who", "assigned")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.misconfigurations.WithLabelValues("missing_world")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.classifications.WithLabelValues("cache")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.classifications.WithLabelValues("walk")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.allocations.WithLabelValues("failure")), 0)
	require.InDelta(t, 5, testutil.ToFloat64(p.requiredWorkers), 0)
	require.InDelta(t, 4, testutil.ToFloat64(p.availableWorkers), 0)
	require.InDelta(t, 4, testutil.ToFloat64(p.layerWorkers.WithLabelValues("Physics")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.claims.WithLabelValues("success")), 0)
}
