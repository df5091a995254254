package stratum

import "github.com/arloliu/stratum/strategy"

// Option configures a LayeredStrategy with optional dependencies.
type Option func(*strategyOptions)

// strategyOptions holds optional LayeredStrategy configuration.
type strategyOptions struct {
	logger   Logger
	metrics  MetricsCollector
	registry *strategy.Registry
	injected map[LayerName]LoadBalanceStrategy
	order    []LayerName
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewLayeredStrategy
//
// Example:
//
//	logger := stratum.NewSlogLogger(slog.Default())
//	ls, err := stratum.NewLayeredStrategy(cfg, "Arena", stratum.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *strategyOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewLayeredStrategy
//
// Example:
//
//	metrics := stratum.NewPrometheusMetrics(prometheus.DefaultRegisterer)
//	ls, err := stratum.NewLayeredStrategy(cfg, "Arena", stratum.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *strategyOptions) {
		o.metrics = metrics
	}
}

// WithStrategyRegistry sets the registry used to build sub-strategies from configuration.
//
// Defaults to strategy.DefaultRegistry().
func WithStrategyRegistry(registry *strategy.Registry) Option {
	return func(o *strategyOptions) {
		o.registry = registry
	}
}

// WithStrategy injects a pre-built sub-strategy for a layer.
//
// The injected strategy replaces whatever the configuration would build for a layer
// of the same name (including the default layer). Layers not present in the
// configuration are appended after the configured layers, in injection order, with
// no class mappings. Init is still cascaded to injected strategies.
//
// Parameters:
//   - layer: Layer name
//   - s: Strategy owned by the LayeredStrategy from now on
//
// Returns:
//   - Option: Functional option for NewLayeredStrategy
//
// Example:
//
//	ls, err := stratum.NewLayeredStrategy(cfg, "Arena",
//	    stratum.WithStrategy("Physics", strategy.NewGrid(strategy.WithGridSize(2, 2))),
//	)
func WithStrategy(layer LayerName, s LoadBalanceStrategy) Option {
	return func(o *strategyOptions) {
		if s == nil {
			return
		}
		if o.injected == nil {
			o.injected = make(map[LayerName]LoadBalanceStrategy)
		}
		if _, ok := o.injected[layer]; !ok {
			o.order = append(o.order, layer)
		}
		o.injected[layer] = s
	}
}
