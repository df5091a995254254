package stratum

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/arloliu/stratum/internal/allocator"
	"github.com/arloliu/stratum/internal/classify"
	"github.com/arloliu/stratum/internal/logging"
	"github.com/arloliu/stratum/internal/metrics"
	"github.com/arloliu/stratum/strategy"
	"github.com/arloliu/stratum/types"
)

// Authority decision query names recorded in metrics.
const (
	queryShould   = "should"
	queryWho      = "who"
	queryInterest = "interest"
	queryPosition = "position"
)

// Authority decision results recorded in metrics.
const (
	resultGranted    = "granted"
	resultDenied     = "denied"
	resultResolved   = "resolved"
	resultNotReady   = "not_ready"
	resultNilEntity  = "nil_entity"
	resultNoStrategy = "no_strategy"
	resultOtherLayer = "other_layer"
	resultNoLayer    = "no_local_layer"
)

// LayeredStrategy partitions entities into layers and delegates each layer to its
// own sub-strategy.
//
// Every class resolves to exactly one layer (the default layer when nothing else
// matches). Each layer's sub-strategy receives a contiguous slice of the virtual
// worker id range, and the local worker only ever gains authority over entities
// of the layer its id belongs to.
//
// Lifecycle:
//
//	ls, _ := stratum.NewLayeredStrategy(cfg, "Arena")
//	_ = ls.Init()                               // build layer registry
//	n := ls.MinimumRequiredWorkers()            // total ids needed
//	_ = ls.SetVirtualWorkerIDs(1, VirtualWorkerID(n))
//	ls.SetLocalVirtualWorkerID(myID)            // now Ready
//
// Init, SetVirtualWorkerIDs, SetLocalVirtualWorkerID and Close must not run
// concurrently with each other or with queries. Once Ready, query methods may be
// called from multiple goroutines.
type LayeredStrategy struct {
	cfg   *Config
	world string

	logger   Logger
	metrics  MetricsCollector
	registry *strategy.Registry
	injected map[LayerName]LoadBalanceStrategy
	order    []LayerName

	state atomic.Int32

	layers     []allocator.Layer
	byName     map[LayerName]LoadBalanceStrategy
	classifier *classify.Classifier
	allocation *allocator.Allocation

	localID    VirtualWorkerID
	localLayer LayerName
	hasLocal   bool
}

var _ LoadBalanceStrategy = (*LayeredStrategy)(nil)

// NewLayeredStrategy creates a layered strategy for one world.
//
// Parameters:
//   - cfg: Configuration (must not be nil; defaults are applied to missing worker id settings)
//   - world: Active world name (empty means cfg.World)
//   - opts: Optional configuration (WithLogger, WithMetrics, WithStrategyRegistry, WithStrategy)
//
// Returns:
//   - *LayeredStrategy: Uninitialized strategy
//   - error: ErrInvalidConfig if cfg is nil or invalid
//
// Example:
//
//	cfg, _ := stratum.LoadConfig("stratum.yaml")
//	ls, err := stratum.NewLayeredStrategy(cfg, "", stratum.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ls.Init(); err != nil {
//	    log.Fatal(err)
//	}
func NewLayeredStrategy(cfg *Config, world string, opts ...Option) (*LayeredStrategy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	c := *cfg
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	options := strategyOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}
	if options.registry == nil {
		options.registry = strategy.DefaultRegistry()
	}

	if world == "" {
		world = c.World
	}

	return &LayeredStrategy{
		cfg:      &c,
		world:    world,
		logger:   options.logger,
		metrics:  options.metrics,
		registry: options.registry,
		injected: options.injected,
		order:    options.order,
	}, nil
}

// Init builds the layer registry from configuration.
//
// Misconfiguration never fails Init. A missing world, or a world without a default
// layer strategy, falls back to a default-layer-only registry and is logged at
// error level. Layers with an empty, duplicate or reserved name, or whose strategy
// cannot be built or initialized, are logged and skipped. The default layer is
// always registered last.
//
// Returns:
//   - error: ErrLoadBalancerDisabled if load balancing is off, ErrAlreadyInitialized on a second call
func (l *LayeredStrategy) Init() error {
	if !l.cfg.EnableLoadBalancer {
		return ErrLoadBalancerDisabled
	}
	if !l.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return ErrAlreadyInitialized
	}
	l.metrics.RecordStateTransition(StateUninitialized, StateInitializing)

	l.layers = nil
	l.byName = make(map[LayerName]LoadBalanceStrategy)
	mapping := make(map[string]LayerName)

	world, ok := l.cfg.Worlds[l.world]
	if !ok {
		l.logger.Error("world has no load balancing configuration, using the default strategy for every entity",
			"world", l.world)
		l.metrics.RecordMisconfiguration("missing_world")
		l.addInjectedLayers(nil)
		l.addDefaultLayer(l.cfg.DefaultStrategy)
	} else {
		configured := make(map[LayerName]struct{}, len(world.Layers))
		for _, lc := range world.Layers {
			configured[lc.Name] = struct{}{}
			l.addConfiguredLayer(lc, mapping)
		}
		l.addInjectedLayers(configured)

		if world.LoadBalanceStrategy == nil {
			if _, injected := l.injected[DefaultLayer]; !injected {
				l.logger.Error("world has no load balancing strategy, using a 1x1 grid", "world", l.world)
				l.metrics.RecordMisconfiguration("missing_world_strategy")
			}
			l.addDefaultLayer(strategy.Config{})
		} else {
			l.addDefaultLayer(*world.LoadBalanceStrategy)
		}
	}

	l.classifier = classify.New(mapping,
		classify.WithEntityRoot(l.cfg.EntityRootClass),
		classify.WithMetrics(l.metrics),
	)

	if _, ok := l.requiredWorkers(); !ok {
		l.logger.Error("layer strategies together need more virtual worker ids than exist; allocation will fail",
			"world", l.world, "layers", l.Layers())
		l.metrics.RecordMisconfiguration("worker_requirement_overflow")
	}

	l.setState(StateInitialized)
	l.logger.Info("layered strategy initialized",
		"world", l.world,
		"layers", l.Layers(),
		"classes", len(mapping),
		"minimum_required_workers", l.MinimumRequiredWorkers())

	return nil
}

// addConfiguredLayer builds one configured layer and records its class mappings.
func (l *LayeredStrategy) addConfiguredLayer(lc LayerConfig, mapping map[string]LayerName) {
	switch {
	case lc.Name == NoLayer:
		l.logger.Error("layer has no name, it will not be simulated")
		l.metrics.RecordMisconfiguration("empty_layer_name")
		return
	case lc.Name.IsDefault():
		l.logger.Error("layer uses the reserved default layer name, it will not be simulated", "layer", lc.Name)
		l.metrics.RecordMisconfiguration("reserved_layer_name")
		return
	}
	if _, dup := l.byName[lc.Name]; dup {
		l.logger.Error("layer is configured twice, only the first definition is simulated", "layer", lc.Name)
		l.metrics.RecordMisconfiguration("duplicate_layer")
		return
	}

	s, injected := l.injected[lc.Name]
	if !injected {
		var err error
		s, err = l.registry.Build(lc.Strategy)
		if err != nil {
			l.logger.Error("layer does not have a usable load balancing strategy, it will not be simulated",
				"layer", lc.Name, "strategy", lc.Strategy.Type, "error", err)
			l.metrics.RecordMisconfiguration("layer_strategy")
			return
		}
	}

	if err := s.Init(); err != nil {
		l.logger.Error("layer strategy failed to initialize, it will not be simulated",
			"layer", lc.Name, "error", err)
		l.metrics.RecordMisconfiguration("layer_strategy_init")
		return
	}

	l.addLayer(lc.Name, s)

	for _, class := range lc.Classes {
		if prev, exists := mapping[class]; exists {
			l.logger.Warn("class is mapped to more than one layer, keeping the first",
				"class", class, "layer", prev, "ignored", lc.Name)
			continue
		}
		mapping[class] = lc.Name
	}
}

// addInjectedLayers appends injected strategies for layers the configuration does not name.
// Configured layers that were skipped stay skipped.
func (l *LayeredStrategy) addInjectedLayers(configured map[LayerName]struct{}) {
	for _, name := range l.order {
		if name == NoLayer || name.IsDefault() {
			continue
		}
		if _, exists := configured[name]; exists {
			continue
		}

		s := l.injected[name]
		if err := s.Init(); err != nil {
			l.logger.Error("injected layer strategy failed to initialize, it will not be simulated",
				"layer", name, "error", err)
			l.metrics.RecordMisconfiguration("layer_strategy_init")
			continue
		}
		l.addLayer(name, s)
	}
}

// addDefaultLayer registers the default layer, falling back to a 1x1 grid.
//
// An empty cfg selects the 1x1 grid directly; callers report that case themselves.
func (l *LayeredStrategy) addDefaultLayer(cfg strategy.Config) {
	if s, ok := l.injected[DefaultLayer]; ok {
		err := s.Init()
		if err == nil {
			l.addLayer(DefaultLayer, s)
			return
		}

		l.logger.Error("injected default layer strategy failed to initialize, using a 1x1 grid", "error", err)
		l.metrics.RecordMisconfiguration("default_strategy_init")
	} else if !cfg.IsZero() {
		s, err := l.registry.Build(cfg)
		if err == nil {
			err = s.Init()
		}
		if err == nil {
			l.addLayer(DefaultLayer, s)
			return
		}

		l.logger.Error("default layer strategy is unusable, using a 1x1 grid", "strategy", cfg.Type, "error", err)
		l.metrics.RecordMisconfiguration("default_strategy")
	}

	grid := strategy.NewGrid()
	_ = grid.Init() // default grid parameters are always valid
	l.addLayer(DefaultLayer, grid)
}

func (l *LayeredStrategy) addLayer(name LayerName, s LoadBalanceStrategy) {
	l.layers = append(l.layers, allocator.Layer{Name: name, Strategy: s})
	l.byName[name] = s
	if l.localID.IsValid() {
		s.SetLocalVirtualWorkerID(l.localID)
	}
	l.logger.Debug("layer registered", "layer", name, "minimum_required_workers", s.MinimumRequiredWorkers())
}

// SetLocalVirtualWorkerID records the local worker id and cascades it to every sub-strategy.
//
// Parameters:
//   - id: Virtual worker id owned by this process
func (l *LayeredStrategy) SetLocalVirtualWorkerID(id VirtualWorkerID) {
	l.localID = id
	for _, layer := range l.layers {
		layer.Strategy.SetLocalVirtualWorkerID(id)
	}

	l.refreshLocalLayer()
	l.refreshState()
}

// SetVirtualWorkerIDs hands the strategy its inclusive id range and carves it into
// per-layer sub-ranges in registry order.
//
// Allocation is all-or-nothing: when the range is too small no sub-strategy is
// told about any id and the previous allocation (if any) stays in place.
//
// Parameters:
//   - first: First id of the range
//   - last: Last id of the range (inclusive)
//
// Returns:
//   - error: ErrNotInitialized before Init, ErrInvalidWorkerRange, ErrInsufficientWorkerIDs,
//     or the error of a sub-strategy rejecting its range
func (l *LayeredStrategy) SetVirtualWorkerIDs(first, last VirtualWorkerID) error {
	if l.State() < StateInitialized {
		return ErrNotInitialized
	}

	required := l.MinimumRequiredWorkers()
	available := WorkerRange{First: first, Last: last}.Len()

	allocation, err := allocator.Assign(first, last, l.layers)
	if err != nil {
		l.logger.Error("layered strategy was not given enough virtual worker ids to meet the demands of the layer strategies",
			"first", first, "last", last, "required", required, "available", available, "error", err)
		l.metrics.RecordWorkerAllocation(false, required, available)

		return err
	}

	l.allocation = allocation
	l.metrics.RecordWorkerAllocation(true, required, available)

	for _, r := range allocation.Ranges() {
		l.logger.Info("assigning virtual worker ids to layer",
			"layer", r.Layer, "first", r.Range.First, "last", r.Range.Last)
		l.metrics.RecordLayerWorkers(r.Layer, r.Range.Len())
	}
	if spare := allocation.Spare(); spare > 0 {
		l.logger.Warn("virtual worker ids left without a layer", "spare", spare)
	}

	l.refreshLocalLayer()
	l.refreshState()

	return nil
}

func (l *LayeredStrategy) refreshLocalLayer() {
	l.localLayer, l.hasLocal = NoLayer, false
	if l.allocation == nil || !l.localID.IsValid() {
		return
	}
	l.localLayer, l.hasLocal = l.allocation.LayerFor(l.localID)
	if !l.hasLocal {
		l.logger.Warn("local virtual worker id is not assigned to any layer", "worker_id", l.localID)
	}
}

func (l *LayeredStrategy) refreshState() {
	cur := l.State()
	if cur < StateInitialized {
		return
	}

	next := StateInitialized
	if l.isReady() {
		next = StateReady
	}
	if next != cur {
		l.setState(next)
	}
}

func (l *LayeredStrategy) setState(next State) {
	prev := State(l.state.Swap(int32(next)))
	if prev != next {
		l.metrics.RecordStateTransition(prev, next)
		l.logger.Debug("layered strategy state changed", "from", prev, "to", next)
	}
}

func (l *LayeredStrategy) isReady() bool {
	return l.localID.IsValid() && l.allocation != nil
}

// MinimumRequiredWorkers returns the sum of every sub-strategy's requirement.
//
// This is the size of the id range to provision before calling SetVirtualWorkerIDs.
// Returns 0 before Init. A sum that does not fit in the id space saturates at
// math.MaxUint32 and every SetVirtualWorkerIDs call then fails.
func (l *LayeredStrategy) MinimumRequiredWorkers() uint32 {
	total, _ := l.requiredWorkers()
	return total
}

// requiredWorkers sums the layer requirements; ok is false when the sum saturated.
func (l *LayeredStrategy) requiredWorkers() (uint32, bool) {
	var total uint64
	for _, layer := range l.layers {
		total += uint64(layer.Strategy.MinimumRequiredWorkers())
	}
	if total > math.MaxUint32 {
		return math.MaxUint32, false
	}

	return uint32(total), true
}

// ShouldHaveAuthority reports whether the local worker should be authoritative over e.
//
// Returns false, with a log entry, when the strategy is not ready, e is nil, or
// e's layer has no strategy. Returns false without delegating when the local worker
// belongs to another layer.
func (l *LayeredStrategy) ShouldHaveAuthority(e Entity) bool {
	if !l.isReady() {
		l.logger.Warn("layered strategy not ready to decide local authority", "entity", entityID(e))
		l.metrics.RecordAuthorityDecision(NoLayer, queryShould, resultNotReady)
		return false
	}
	if e == nil {
		l.logger.Warn("authority requested for nil entity")
		l.metrics.RecordAuthorityDecision(NoLayer, queryShould, resultNilEntity)
		return false
	}

	layer := l.classifier.ResolveLayer(e.Class())
	s, ok := l.byName[layer]
	if !ok {
		l.logger.Error("layered strategy has no strategy for entity layer", "entity", e.ID(), "layer", layer)
		l.metrics.RecordAuthorityDecision(layer, queryShould, resultNoStrategy)
		return false
	}

	if l.hasLocal && l.localLayer != layer {
		l.metrics.RecordAuthorityDecision(layer, queryShould, resultOtherLayer)
		return false
	}

	granted := s.ShouldHaveAuthority(e)
	if granted {
		l.metrics.RecordAuthorityDecision(layer, queryShould, resultGranted)
	} else {
		l.metrics.RecordAuthorityDecision(layer, queryShould, resultDenied)
	}

	return granted
}

// WhoShouldHaveAuthority returns the worker that should be authoritative over e.
//
// The decision is delegated to e's layer regardless of the local worker's layer.
// Returns InvalidVirtualWorkerID when the strategy is not ready, e is nil, e's layer
// has no strategy, or the sub-strategy cannot decide.
func (l *LayeredStrategy) WhoShouldHaveAuthority(e Entity) VirtualWorkerID {
	if !l.isReady() {
		l.logger.Warn("layered strategy not ready to decide on authority", "entity", entityID(e))
		l.metrics.RecordAuthorityDecision(NoLayer, queryWho, resultNotReady)
		return InvalidVirtualWorkerID
	}
	if e == nil {
		l.logger.Warn("authority owner requested for nil entity")
		l.metrics.RecordAuthorityDecision(NoLayer, queryWho, resultNilEntity)
		return InvalidVirtualWorkerID
	}

	layer := l.classifier.ResolveLayer(e.Class())
	s, ok := l.byName[layer]
	if !ok {
		l.logger.Error("layered strategy has no strategy for entity layer", "entity", e.ID(), "layer", layer)
		l.metrics.RecordAuthorityDecision(layer, queryWho, resultNoStrategy)
		return InvalidVirtualWorkerID
	}

	id := s.WhoShouldHaveAuthority(e)
	l.logger.Debug("layered strategy returning virtual worker id", "entity", e.ID(), "layer", layer, "worker_id", id)
	l.metrics.RecordAuthorityDecision(layer, queryWho, resultResolved)

	return id
}

// WorkerInterestQueryConstraint returns the interest of the local worker's layer strategy.
//
// Returns the empty constraint when not ready or when the local worker has no layer.
func (l *LayeredStrategy) WorkerInterestQueryConstraint() QueryConstraint {
	s, ok := l.localStrategy(queryInterest)
	if !ok {
		return QueryConstraint{}
	}

	return s.WorkerInterestQueryConstraint()
}

// WorkerEntityPosition returns where the local worker's layer strategy places the worker.
//
// Returns the zero vector when not ready or when the local worker has no layer.
func (l *LayeredStrategy) WorkerEntityPosition() Vector {
	s, ok := l.localStrategy(queryPosition)
	if !ok {
		return types.ZeroVector
	}

	return s.WorkerEntityPosition()
}

func (l *LayeredStrategy) localStrategy(query string) (LoadBalanceStrategy, bool) {
	if !l.isReady() {
		l.logger.Warn("layered strategy not ready", "query", query)
		l.metrics.RecordAuthorityDecision(NoLayer, query, resultNotReady)
		return nil, false
	}
	if !l.hasLocal {
		l.logger.Error("layered strategy has no strategy for local worker", "worker_id", l.localID, "query", query)
		l.metrics.RecordAuthorityDecision(NoLayer, query, resultNoLayer)
		return nil, false
	}

	l.metrics.RecordAuthorityDecision(l.localLayer, query, resultResolved)

	return l.byName[l.localLayer], true
}

// IsLayerOwner reports whether the local worker is one of the workers assigned to layer.
//
// With several workers sharing a layer there is no single owner; every one of them
// reports true.
func (l *LayeredStrategy) IsLayerOwner(layer LayerName) bool {
	return l.hasLocal && l.localLayer == layer
}

// LocalLayer returns the layer the local worker id belongs to.
//
// Returns:
//   - LayerName: Local layer (NoLayer if unknown)
//   - bool: False before ids are assigned, before the local id is set, or for a spare id
func (l *LayeredStrategy) LocalLayer() (LayerName, bool) {
	return l.localLayer, l.hasLocal
}

// LayerForClass resolves the layer of a class. Returns NoLayer for nil or before Init.
func (l *LayeredStrategy) LayerForClass(c Class) LayerName {
	if l.classifier == nil {
		return NoLayer
	}

	return l.classifier.ResolveLayer(c)
}

// LayerForEntity resolves the layer of an entity. Returns NoLayer for nil or before Init.
func (l *LayeredStrategy) LayerForEntity(e Entity) LayerName {
	if e == nil {
		return NoLayer
	}

	return l.LayerForClass(e.Class())
}

// SameLayer reports whether two entities belong to the same layer.
//
// Returns false if either entity or its class is nil.
func (l *LayeredStrategy) SameLayer(a, b Entity) bool {
	if a == nil || b == nil || l.classifier == nil {
		return false
	}

	return l.classifier.SameLayer(a.Class(), b.Class())
}

// StrategyFor returns the sub-strategy registered for a layer.
func (l *LayeredStrategy) StrategyFor(layer LayerName) (LoadBalanceStrategy, bool) {
	s, ok := l.byName[layer]
	return s, ok
}

// Layers returns the registered layer names in registry order (default layer last).
func (l *LayeredStrategy) Layers() []LayerName {
	names := make([]LayerName, 0, len(l.layers))
	for _, layer := range l.layers {
		names = append(names, layer.Name)
	}

	return names
}

// Ranges returns the per-layer id ranges of the current allocation, or nil.
func (l *LayeredStrategy) Ranges() []LayerRange {
	if l.allocation == nil {
		return nil
	}

	return l.allocation.Ranges()
}

// VirtualWorkerIDs expands the last successfully assigned range into a slice.
//
// The slice is built on every call and grows with the offered range; use
// OfferedRange or SpareWorkers when only its bounds or size are needed.
func (l *LayeredStrategy) VirtualWorkerIDs() []VirtualWorkerID {
	if l.allocation == nil {
		return nil
	}

	return l.allocation.Offered().IDs()
}

// OfferedRange returns the last successfully assigned range.
//
// Returns:
//   - WorkerRange: The range passed to SetVirtualWorkerIDs
//   - bool: false if no range has been assigned
func (l *LayeredStrategy) OfferedRange() (WorkerRange, bool) {
	if l.allocation == nil {
		return WorkerRange{}, false
	}

	return l.allocation.Offered(), true
}

// SpareWorkers returns how many ids of the assigned range no layer claimed.
func (l *LayeredStrategy) SpareWorkers() uint32 {
	if l.allocation == nil {
		return 0
	}

	return l.allocation.Spare()
}

// LocalVirtualWorkerID returns the local worker id, or InvalidVirtualWorkerID.
func (l *LayeredStrategy) LocalVirtualWorkerID() VirtualWorkerID {
	return l.localID
}

// World returns the name of the world this strategy was built for.
func (l *LayeredStrategy) World() string {
	return l.world
}

// State returns the current lifecycle state.
func (l *LayeredStrategy) State() State {
	return State(l.state.Load())
}

// Close releases every sub-strategy and returns the strategy to StateUninitialized.
//
// Sub-strategies implementing io.Closer are closed; their errors are joined.
// After Close the strategy may be initialized again.
func (l *LayeredStrategy) Close() error {
	var errs []error
	for _, layer := range l.layers {
		if c, ok := layer.Strategy.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close layer %s: %w", layer.Name, err))
			}
		}
	}

	l.layers = nil
	l.byName = nil
	l.classifier = nil
	l.allocation = nil
	l.localLayer, l.hasLocal = NoLayer, false
	l.setState(StateUninitialized)

	return errors.Join(errs...)
}

func entityID(e Entity) any {
	if e == nil {
		return nil
	}

	return e.ID()
}
