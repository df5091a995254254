package stratum

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/stratum/strategy"
	"github.com/arloliu/stratum/types"
)

// LayerConfig assigns a set of entity classes to a layer backed by one sub-strategy.
type LayerConfig struct {
	// Name of the layer. Must be unique within a world and must not be the default layer.
	Name types.LayerName `yaml:"name"`

	// Classes lists class paths simulated by this layer. Subclasses inherit the mapping
	// unless they (or a nearer ancestor) are mapped themselves.
	Classes []string `yaml:"classes"`

	// Strategy selects the sub-strategy partitioning the layer.
	Strategy strategy.Config `yaml:"strategy"`
}

// WorldConfig is the load balancing configuration of one world (map).
type WorldConfig struct {
	// LoadBalanceStrategy backs the default layer. A nil value is a misconfiguration
	// and falls back to a 1x1 grid.
	LoadBalanceStrategy *strategy.Config `yaml:"loadBalanceStrategy"`

	// Layers in registry order. Order decides which concrete ids each layer receives.
	Layers []LayerConfig `yaml:"layers"`
}

// WorkerIDConfig controls virtual worker id claiming through NATS KV.
type WorkerIDConfig struct {
	// Bucket is the KV bucket holding id leases.
	Bucket string `yaml:"bucket" env:"STRATUM_WORKER_ID_BUCKET"`

	// TTL is how long a lease survives without renewal. Renewal runs every TTL/3.
	TTL time.Duration `yaml:"ttl" env:"STRATUM_WORKER_ID_TTL"`

	// OperationTimeout bounds bucket creation and the id claim.
	OperationTimeout time.Duration `yaml:"operationTimeout" env:"STRATUM_WORKER_ID_OPERATION_TIMEOUT"`
}

// Config is the configuration for the LayeredStrategy.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
//
// Example YAML:
//
//	enableLoadBalancer: true
//	world: Arena
//	entityRootClass: /Script/Engine.Actor
//	worlds:
//	  Arena:
//	    loadBalanceStrategy:
//	      type: grid
//	      grid: {rows: 2, cols: 2}
//	    layers:
//	      - name: Physics
//	        classes: [/Game/Projectile]
//	        strategy: {type: consistent_hash, hash: {workers: 2}}
type Config struct {
	// EnableLoadBalancer turns distributed load balancing on. Init refuses to run when false.
	EnableLoadBalancer bool `yaml:"enableLoadBalancer" env:"STRATUM_ENABLE_LOAD_BALANCER"`

	// World names the active entry of Worlds.
	World string `yaml:"world" env:"STRATUM_WORLD"`

	// EntityRootClass is the class path at which classification walks stop.
	// Empty means walk to the root of every hierarchy.
	EntityRootClass string `yaml:"entityRootClass"`

	// DefaultStrategy backs the default layer when the active world has no configuration.
	// An empty type means a 1x1 grid.
	DefaultStrategy strategy.Config `yaml:"defaultStrategy"`

	// Worlds maps world names to their layer configuration.
	Worlds map[string]WorldConfig `yaml:"worlds"`

	// Classes is a static child → parent class hierarchy used by tooling to resolve
	// class paths without a live object model.
	Classes map[string]string `yaml:"classes"`

	// WorkerID controls virtual worker id claiming.
	WorkerID WorkerIDConfig `yaml:"workerId"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		EnableLoadBalancer: true,
		WorkerID: WorkerIDConfig{
			Bucket:           "stratum-worker-ids",
			TTL:              30 * time.Second,
			OperationTimeout: 10 * time.Second,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// EnableLoadBalancer is left untouched: false is a meaningful value.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.WorkerID.Bucket == "" {
		cfg.WorkerID.Bucket = defaults.WorkerID.Bucket
	}
	if cfg.WorkerID.TTL == 0 {
		cfg.WorkerID.TTL = defaults.WorkerID.TTL
	}
	if cfg.WorkerID.OperationTimeout == 0 {
		cfg.WorkerID.OperationTimeout = defaults.WorkerID.OperationTimeout
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Layer-level problems (empty or duplicate names, unknown strategy types) are not
// errors: Init skips such layers. ValidateWithWarnings reports them.
//
// Hard Validation Rules:
//   - WorkerID.Bucket is not empty
//   - WorkerID.TTL >= 1s and WorkerID.OperationTimeout > 0
//   - Classes forms a hierarchy without cycles
//   - DefaultStrategy, if set, has valid parameters
//
// Returns:
//   - error: Wrapped ErrInvalidConfig with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.WorkerID.Bucket == "" {
		return fmt.Errorf("%w: workerId.bucket must not be empty", ErrInvalidConfig)
	}
	if cfg.WorkerID.TTL < time.Second {
		return fmt.Errorf("%w: workerId.ttl (%v) must be >= 1s", ErrInvalidConfig, cfg.WorkerID.TTL)
	}
	if cfg.WorkerID.OperationTimeout <= 0 {
		return fmt.Errorf("%w: workerId.operationTimeout must be > 0, got %v", ErrInvalidConfig, cfg.WorkerID.OperationTimeout)
	}

	if _, err := types.NewClassTable(cfg.Classes); err != nil {
		return fmt.Errorf("%w: classes: %w", ErrInvalidConfig, err)
	}

	if !cfg.DefaultStrategy.IsZero() {
		if err := cfg.DefaultStrategy.Validate(); err != nil {
			return fmt.Errorf("%w: defaultStrategy: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// ValidateWithWarnings logs warnings for configuration that Init will degrade.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if !cfg.EnableLoadBalancer {
		logger.Warn("distributed load balancing is disabled")
	}

	world, ok := cfg.Worlds[cfg.World]
	if !ok {
		logger.Warn("active world has no load balancing configuration, the default strategy will be used",
			"world", cfg.World)

		return
	}

	if world.LoadBalanceStrategy == nil {
		logger.Warn("world has no default layer strategy, a 1x1 grid will be used", "world", cfg.World)
	}

	seen := make(map[types.LayerName]struct{}, len(world.Layers))
	for i, layer := range world.Layers {
		switch {
		case layer.Name == types.NoLayer:
			logger.Warn("layer has no name and will be skipped", "index", i)
		case layer.Name.IsDefault():
			logger.Warn("layer uses the reserved default name and will be skipped", "index", i)
		default:
			if _, dup := seen[layer.Name]; dup {
				logger.Warn("duplicate layer will be skipped", "layer", layer.Name, "index", i)
			}
			seen[layer.Name] = struct{}{}
		}

		if err := layer.Strategy.Validate(); err != nil {
			logger.Warn("layer strategy is invalid, layer will not be simulated", "layer", layer.Name, "error", err)
		}
		if len(layer.Classes) == 0 {
			logger.Warn("layer has no classes, only explicit lookups will reach it", "layer", layer.Name)
		}
	}
}

// ActiveWorld returns the configuration of the active world.
func (cfg *Config) ActiveWorld() (WorldConfig, bool) {
	w, ok := cfg.Worlds[cfg.World]
	return w, ok
}

// ClassTable builds the static class hierarchy from Classes.
func (cfg *Config) ClassTable() (*types.ClassTable, error) {
	return types.NewClassTable(cfg.Classes)
}

// TestConfig returns a configuration optimized for fast test execution.
//
// The active world is "Test" with a 1x1 grid default layer and no extra layers.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := stratum.TestConfig()
//	cfg.Worlds["Test"] = stratum.WorldConfig{...}
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.World = "Test"
	cfg.Worlds = map[string]WorldConfig{
		"Test": {LoadBalanceStrategy: &strategy.Config{Type: strategy.TypeGrid}},
	}
	cfg.WorkerID.TTL = 2 * time.Second
	cfg.WorkerID.OperationTimeout = 2 * time.Second

	return cfg
}

// ParseConfig decodes YAML configuration, applies defaults and environment overrides,
// and validates the result.
//
// EnableLoadBalancer defaults to true when the document omits it.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - *Config: Parsed configuration
//   - error: Decode, environment or validation error
func ParseConfig(data []byte) (*Config, error) {
	cfg := Config{EnableLoadBalancer: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfig reads a YAML configuration file. See ParseConfig.
//
// Example:
//
//	cfg, err := stratum.LoadConfig("stratum.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ls, err := stratum.NewLayeredStrategy(cfg, cfg.World)
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}
