package metrics

import (
	"sync"

	"github.com/arloliu/stratum/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// PrometheusCollector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions   *prometheus.CounterVec
	currentState       prometheus.Gauge
	authorityDecisions *prometheus.CounterVec
	misconfigurations  *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	allocations        *prometheus.CounterVec
	requiredWorkers    prometheus.Gauge
	availableWorkers   prometheus.Gauge
	layerWorkers       *prometheus.GaugeVec
	claims             *prometheus.CounterVec
	claimAttempts      prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "stratum" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "stratum"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "state_transitions_total",
			Help:      "Total layered strategy state transitions by source and target state.",
		}, []string{"from", "to"})

		p.currentState = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "state",
			Help:      "Current layered strategy state (0=uninitialized,1=initializing,2=initialized,3=ready).",
		})

		p.authorityDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "authority_decisions_total",
			Help:      "Authority query outcomes by layer, query kind and result.",
		}, []string{"layer", "query", "result"})

		p.misconfigurations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "misconfigurations_total",
			Help:      "Configuration problems handled by degrading to defaults, by reason.",
		}, []string{"reason"})

		p.classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "classifier",
			Name:      "resolutions_total",
			Help:      "Class to layer resolutions by source (cache,walk).",
		}, []string{"source"})

		p.allocations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "allocations_total",
			Help:      "Worker-id range allocation attempts by result (success,failure).",
		}, []string{"result"})

		p.requiredWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "required_workers",
			Help:      "Total virtual workers required by all layers at the last allocation.",
		})

		p.availableWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "available_workers",
			Help:      "Size of the virtual worker id range offered at the last allocation.",
		})

		p.layerWorkers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "layer_workers",
			Help:      "Virtual worker ids assigned to each layer.",
		}, []string{"layer"})

		p.claims = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "provision",
			Name:      "claims_total",
			Help:      "Local virtual worker id claim attempts by result (success,failure).",
		}, []string{"result"})

		p.claimAttempts = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "provision",
			Name:      "claim_probes",
			Help:      "Number of ids probed before a claim completed.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 .. 128
		})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.currentState)
		p.reg.MustRegister(p.authorityDecisions)
		p.reg.MustRegister(p.misconfigurations)
		p.reg.MustRegister(p.classifications)
		p.reg.MustRegister(p.allocations)
		p.reg.MustRegister(p.requiredWorkers)
		p.reg.MustRegister(p.availableWorkers)
		p.reg.MustRegister(p.layerWorkers)
		p.reg.MustRegister(p.claims)
		p.reg.MustRegister(p.claimAttempts)
	})
}

// RecordStateTransition counts the transition and updates the current state gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.currentState.Set(float64(to))
}

// RecordAuthorityDecision counts an authority query outcome.
func (p *PrometheusCollector) RecordAuthorityDecision(layer types.LayerName, query string, result string) {
	p.ensureRegistered()
	p.authorityDecisions.WithLabelValues(string(layer), query, result).Inc()
}

// RecordMisconfiguration counts a degraded configuration path.
func (p *PrometheusCollector) RecordMisconfiguration(reason string) {
	p.ensureRegistered()
	p.misconfigurations.WithLabelValues(reason).Inc()
}

// RecordClassification counts a class resolution by source.
func (p *PrometheusCollector) RecordClassification(cached bool) {
	p.ensureRegistered()
	if cached {
		p.classifications.WithLabelValues("cache").Inc()
	} else {
		p.classifications.WithLabelValues("walk").Inc()
	}
}

// RecordWorkerAllocation counts an allocation attempt and records its sizes.
func (p *PrometheusCollector) RecordWorkerAllocation(success bool, required, available uint32) {
	p.ensureRegistered()
	if success {
		p.allocations.WithLabelValues("success").Inc()
	} else {
		p.allocations.WithLabelValues("failure").Inc()
	}
	p.requiredWorkers.Set(float64(required))
	p.availableWorkers.Set(float64(available))
}

// RecordLayerWorkers sets the per-layer worker gauge.
func (p *PrometheusCollector) RecordLayerWorkers(layer types.LayerName, count uint32) {
	p.ensureRegistered()
	p.layerWorkers.WithLabelValues(string(layer)).Set(float64(count))
}

// RecordWorkerClaim counts a claim attempt and observes the probe count.
func (p *PrometheusCollector) RecordWorkerClaim(success bool, attempts int) {
	p.ensureRegistered()
	if success {
		p.claims.WithLabelValues("success").Inc()
	} else {
		p.claims.WithLabelValues("failure").Inc()
	}
	p.claimAttempts.Observe(float64(attempts))
}
