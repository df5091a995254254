// Package classify resolves entity classes to load-balancing layers.
//
// Resolution walks a class's ancestor chain, most-derived first, and stops at the
// first class with a known layer. The answer is memoised for the original class so
// later lookups are a single map read. Classes with no mapped ancestor resolve to
// types.DefaultLayer; resolution never fails.
//
// The memo is an xsync.Map. Writes are idempotent (recomputing a class always yields
// the same layer), so concurrent resolvers may race on the same key with
// last-write-wins and no observable difference.
package classify

import (
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/stratum/internal/metrics"
	"github.com/arloliu/stratum/types"
)

// Classifier maps entity classes to layer names.
type Classifier struct {
	memo       *xsync.Map[string, types.LayerName]
	entityRoot string
	metrics    types.MetricsCollector
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithEntityRoot sets the path of the simulated-entity base class.
//
// The ancestor walk checks the root itself and then stops, so mappings placed on
// classes above the entity base (engine object types) are never consulted.
//
// Parameters:
//   - path: Class path of the entity base class ("" walks the full chain)
//
// Returns:
//   - Option: Configuration option
func WithEntityRoot(path string) Option {
	return func(c *Classifier) {
		c.entityRoot = path
	}
}

// WithMetrics sets the metrics collector used to record cache hits and walks.
func WithMetrics(m types.MetricsCollector) Option {
	return func(c *Classifier) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New creates a classifier seeded with explicit class → layer mappings.
//
// Parameters:
//   - mapping: Class path to layer name (may be nil)
//   - opts: Optional configuration (WithEntityRoot, WithMetrics)
//
// Returns:
//   - *Classifier: Initialized classifier
//
// Example:
//
//	c := classify.New(map[string]types.LayerName{"/Game/AI/Bot": "AI"})
//	layer := c.ResolveLayer(botSubclass) // "AI"
func New(mapping map[string]types.LayerName, opts ...Option) *Classifier {
	c := &Classifier{
		memo:    xsync.NewMap[string, types.LayerName](),
		metrics: metrics.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	for path, layer := range mapping {
		c.memo.Store(path, layer)
	}

	return c
}

// ResolveLayer returns the layer for class.
//
// Returns:
//   - types.LayerName: Resolved layer; types.DefaultLayer when nothing in the chain
//     is mapped; types.NoLayer only when class is nil
func (c *Classifier) ResolveLayer(class types.Class) types.LayerName {
	if class == nil {
		return types.NoLayer
	}

	path := class.Path()
	if layer, ok := c.memo.Load(path); ok {
		c.metrics.RecordClassification(true)
		return layer
	}
	c.metrics.RecordClassification(false)

	for current := class; current != nil; current = current.Parent() {
		currentPath := current.Path()
		if layer, ok := c.memo.Load(currentPath); ok {
			c.memo.Store(path, layer)
			return layer
		}

		if c.entityRoot != "" && currentPath == c.entityRoot {
			break
		}
	}

	c.memo.Store(path, types.DefaultLayer)

	return types.DefaultLayer
}

// SameLayer reports whether a and b resolve to the same layer.
//
// Absent identities never match: SameLayer(nil, x) and SameLayer(x, nil) are false.
func (c *Classifier) SameLayer(a, b types.Class) bool {
	if a == nil || b == nil {
		return false
	}

	return c.ResolveLayer(a) == c.ResolveLayer(b)
}

// Cached returns the memoised layer for path without walking.
//
// Returns:
//   - types.LayerName: Memoised layer (NoLayer if absent)
//   - bool: true if path is in the memo
func (c *Classifier) Cached(path string) (types.LayerName, bool) {
	return c.memo.Load(path)
}

// Size returns the number of memoised classes, including explicit mappings.
func (c *Classifier) Size() int {
	return c.memo.Size()
}
