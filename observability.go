package stratum

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/stratum/internal/logging"
	"github.com/arloliu/stratum/internal/metrics"
)

// NewSlogLogger adapts a slog.Logger to Logger.
//
// Parameters:
//   - logger: slog logger (slog.Default() if nil)
//
// Returns:
//   - Logger: Logger writing through slog
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return logging.NewSlogDefault()
	}

	return logging.NewSlog(logger)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logging.NewNop()
}

// NewPrometheusMetrics creates a Prometheus-backed MetricsCollector.
//
// Metrics are registered lazily under the "stratum" namespace on first use.
//
// Parameters:
//   - reg: Registerer (prometheus.DefaultRegisterer if nil)
//
// Returns:
//   - MetricsCollector: Collector recording state, authority, allocation and claim metrics
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	ls, err := stratum.NewLayeredStrategy(cfg, "Arena", stratum.WithMetrics(stratum.NewPrometheusMetrics(reg)))
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsCollector {
	return metrics.NewPrometheus(reg, "")
}

// NewNopMetrics returns a MetricsCollector that records nothing.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}
