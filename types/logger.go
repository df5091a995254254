package types

// Logger is the structured logger every stratum component writes to.
//
// Log sites pass alternating key-value pairs ("layer", name, "worker_id", id).
// stratum.NewSlogLogger adapts a *slog.Logger. Levels are used consistently:
//
//   - Debug: per-query decisions, layer registration, lease renewals, state changes
//   - Info: initialization summary, per-layer id ranges, claimed and released ids
//   - Warn: queries made before Ready, nil entities, spare or unassigned local ids,
//     retried lease renewals, config fields that degrade to defaults
//   - Error: skipped layers and fallback strategies, failed allocations,
//     missing strategies on the query path, failed claims, lost leases
//
// Stratum never calls Fatal itself; it is part of the interface so callers can
// hand over their application logger unchanged.
type Logger interface {
	// Debug logs high-volume detail such as individual authority decisions.
	Debug(msg string, keysAndValues ...any)

	// Info logs lifecycle milestones.
	Info(msg string, keysAndValues ...any)

	// Warn logs conditions stratum handles by returning a safe sentinel.
	Warn(msg string, keysAndValues ...any)

	// Error logs misconfiguration and failures that leave part of the world unsimulated.
	Error(msg string, keysAndValues ...any)

	// Fatal logs msg and terminates the process.
	Fatal(msg string, keysAndValues ...any)
}
