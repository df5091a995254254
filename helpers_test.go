package stratum

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arloliu/stratum/types"
)

// logEntry is one message captured by recordingLogger.
type logEntry struct {
	level string
	msg   string
}

// recordingLogger captures log messages for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

var _ types.Logger = (*recordingLogger)(nil)

func (r *recordingLogger) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg})
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.add("debug", msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.add("info", msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.add("warn", msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.add("error", msg) }
func (r *recordingLogger) Fatal(msg string, _ ...any) { r.add("fatal", msg) }

// count returns how many messages at level contain substr.
func (r *recordingLogger) count(level, substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.level == level && strings.Contains(e.msg, substr) {
			n++
		}
	}

	return n
}

// fakeStrategy is a scriptable sub-strategy.
type fakeStrategy struct {
	min      uint32
	initErr  error
	setErr   error
	closeErr error

	initCalls  int
	setCalls   int
	queryCalls int
	closed     bool

	first, last types.VirtualWorkerID
	localID     types.VirtualWorkerID

	position types.Vector
}

var _ types.LoadBalanceStrategy = (*fakeStrategy)(nil)

func newFake(required uint32) *fakeStrategy {
	return &fakeStrategy{min: required}
}

func (f *fakeStrategy) Init() error {
	f.initCalls++
	return f.initErr
}

func (f *fakeStrategy) SetLocalVirtualWorkerID(id types.VirtualWorkerID) { f.localID = id }

func (f *fakeStrategy) SetVirtualWorkerIDs(first, last types.VirtualWorkerID) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.first, f.last = first, last

	return nil
}

func (f *fakeStrategy) MinimumRequiredWorkers() uint32 { return f.min }

// ShouldHaveAuthority grants authority when the local id is the entity's owner.
func (f *fakeStrategy) ShouldHaveAuthority(e types.Entity) bool {
	f.queryCalls++
	return f.localID.IsValid() && f.owner(e) == f.localID
}

func (f *fakeStrategy) WhoShouldHaveAuthority(e types.Entity) types.VirtualWorkerID {
	f.queryCalls++
	return f.owner(e)
}

// owner spreads entities over the assigned range by id.
func (f *fakeStrategy) owner(e types.Entity) types.VirtualWorkerID {
	if e == nil || !f.first.IsValid() {
		return types.InvalidVirtualWorkerID
	}
	n := uint64(f.last-f.first) + 1

	return f.first + types.VirtualWorkerID(uint64(e.ID())%n)
}

func (f *fakeStrategy) WorkerInterestQueryConstraint() types.QueryConstraint {
	return types.QueryConstraint{Component: types.ComponentID(f.min)}
}

func (f *fakeStrategy) WorkerEntityPosition() types.Vector { return f.position }

func (f *fakeStrategy) Close() error {
	f.closed = true
	return f.closeErr
}

func (f *fakeStrategy) String() string {
	return fmt.Sprintf("fake(min=%d)", f.min)
}

var errRejected = errors.New("range rejected")

// Test class hierarchy:
//
//	Object
//	└── Actor (entity root)
//	    ├── Pawn
//	    │   ├── Character
//	    │   │   └── Archer
//	    │   └── Vehicle
//	    └── Projectile
//	        └── Arrow
var (
	classObject     = types.NewClass("/Script/CoreUObject.Object", nil)
	classActor      = types.NewClass("/Script/Engine.Actor", classObject)
	classPawn       = types.NewClass("/Script/Engine.Pawn", classActor)
	classCharacter  = types.NewClass("/Script/Engine.Character", classPawn)
	classArcher     = types.NewClass("/Game/Archer", classCharacter)
	classVehicle    = types.NewClass("/Game/Vehicle", classPawn)
	classProjectile = types.NewClass("/Game/Projectile", classActor)
	classArrow      = types.NewClass("/Game/Arrow", classProjectile)
)
