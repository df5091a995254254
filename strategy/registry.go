package strategy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/stratum/types"
)

// Factory builds an uninitialized sub-strategy from configuration.
type Factory func(cfg Config) (types.LoadBalanceStrategy, error)

// Registry maps strategy type names to factories.
//
// Registry is safe for concurrent use.
type Registry struct {
	factories *xsync.Map[string, Factory]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[string, Factory]()}
}

// DefaultRegistry creates a registry with the built-in strategies registered.
//
// Returns:
//   - *Registry: Registry knowing grid, single and consistent_hash
//
// Example:
//
//	reg := strategy.DefaultRegistry()
//	s, err := reg.Build(strategy.Config{Type: strategy.TypeSingle})
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.factories.Store(TypeGrid, func(cfg Config) (types.LoadBalanceStrategy, error) {
		return NewGridFromConfig(cfg.Grid)
	})
	r.factories.Store(TypeSingle, func(cfg Config) (types.LoadBalanceStrategy, error) {
		return NewSingle(WithPosition(cfg.Single.Position)), nil
	})
	r.factories.Store(TypeConsistentHash, func(cfg Config) (types.LoadBalanceStrategy, error) {
		return NewConsistentHashFromConfig(cfg.Hash)
	})

	return r
}

// Register adds a factory for a strategy type.
//
// Parameters:
//   - name: Strategy type name used in configuration
//   - factory: Constructor for the type
//
// Returns:
//   - error: Error if name is empty, factory is nil, or name is already registered
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("strategy name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("strategy %q: factory must not be nil", name)
	}

	if _, loaded := r.factories.LoadOrStore(name, factory); loaded {
		return fmt.Errorf("strategy %q already registered", name)
	}

	return nil
}

// Build validates cfg and constructs the strategy it names.
//
// The returned strategy has not been initialized.
//
// Returns:
//   - types.LoadBalanceStrategy: New strategy
//   - error: Wrapped types.ErrUnknownStrategy or types.ErrInvalidStrategyConfig
func (r *Registry) Build(cfg Config) (types.LoadBalanceStrategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory, ok := r.factories.Load(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownStrategy, cfg.Type)
	}

	s, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s strategy: %w", cfg.Type, err)
	}
	if s == nil {
		return nil, invalidConfig("factory for %q returned nil", cfg.Type)
	}

	return s, nil
}

// Has reports whether a type is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories.Load(name)
	return ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	names := make([]string, 0, r.factories.Size())
	r.factories.Range(func(name string, _ Factory) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}
