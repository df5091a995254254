// Package workerid claims virtual worker ids through NATS KV leases.
//
// Every worker process computes the same id range from the shared configuration
// and then races to create one key per id. A KV Create succeeds for exactly one
// process, which makes the id its own until it releases the key or stops renewing
// it and the bucket TTL expires the lease.
package workerid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/stratum/internal/logging"
	"github.com/arloliu/stratum/internal/metrics"
	"github.com/arloliu/stratum/internal/natsutil"
	"github.com/arloliu/stratum/types"
)

// DefaultKeyPrefix prefixes every lease key ("vworker.7").
const DefaultKeyPrefix = "vworker"

// DefaultTTL is the lease lifetime used when none is configured.
const DefaultTTL = 30 * time.Second

// releaseWait bounds how long Release waits for the renewal loop to exit.
const releaseWait = 5 * time.Second

// Claimer claims one virtual worker id from a range and keeps the lease alive.
type Claimer struct {
	kv     jetstream.KeyValue
	ids    types.WorkerRange
	prefix string
	ttl    time.Duration
	token  string

	mu       sync.Mutex
	id       types.VirtualWorkerID
	revision uint64
	stopCh   chan struct{}
	doneCh   chan struct{}

	lostCh  chan struct{}
	lostErr error

	logger  types.Logger
	metrics types.ProvisionMetrics
}

// Option configures a Claimer.
type Option func(*Claimer)

// WithKeyPrefix sets the lease key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Claimer) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets the lease lifetime. Renewal runs at a third of it.
//
// The TTL must match the bucket TTL; the bucket decides when a lease expires.
func WithTTL(ttl time.Duration) Option {
	return func(c *Claimer) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(c *Claimer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the claim metrics sink.
func WithMetrics(m types.ProvisionMetrics) Option {
	return func(c *Claimer) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClaimer creates a claimer for ids in the given range.
//
// Parameters:
//   - kv: Lease bucket (see kvutil.LeaseBucketConfig)
//   - ids: Inclusive range of claimable virtual worker ids
//   - opts: Optional configuration
//
// Returns:
//   - *Claimer: New claimer instance
//
// Example:
//
//	claimer := workerid.NewClaimer(kv, types.WorkerRange{First: 1, Last: 5}, workerid.WithTTL(10*time.Second))
//	id, err := claimer.Claim(ctx)
func NewClaimer(kv jetstream.KeyValue, ids types.WorkerRange, opts ...Option) *Claimer {
	c := &Claimer{
		kv:      kv,
		ids:     ids,
		prefix:  DefaultKeyPrefix,
		ttl:     DefaultTTL,
		token:   uuid.NewString(),
		lostCh:  make(chan struct{}),
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Claim takes the lowest free id in the range.
//
// Ids are tried in ascending order with an atomic KV Create. An id already held
// by another process is skipped.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - types.VirtualWorkerID: Claimed id
//   - error: types.ErrNoAvailableWorkerID when every id is held, the Err value after a
//     lost lease, context or NATS error otherwise
func (c *Claimer) Claim(ctx context.Context) (types.VirtualWorkerID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id.IsValid() {
		return c.id, nil
	}
	if c.lostErr != nil {
		return types.InvalidVirtualWorkerID, c.lostErr
	}
	if !c.ids.First.IsValid() || c.ids.Len() == 0 {
		return types.InvalidVirtualWorkerID, fmt.Errorf("%w: [%d, %d]", types.ErrInvalidWorkerRange, c.ids.First, c.ids.Last)
	}

	c.logger.Debug("virtual worker id claim starting", "first", c.ids.First, "last", c.ids.Last, "ttl", c.ttl)

	attempts := 0
	for id := c.ids.First; ; id++ {
		if err := ctx.Err(); err != nil {
			c.metrics.RecordWorkerClaim(false, attempts)
			return types.InvalidVirtualWorkerID, err
		}

		attempts++
		key := c.key(id)
		revision, err := c.kv.Create(ctx, key, []byte(c.token))
		if err == nil {
			c.id = id
			c.revision = revision
			c.metrics.RecordWorkerClaim(true, attempts)
			c.logger.Info("virtual worker id claimed", "worker_id", id, "key", key, "attempts", attempts)

			return id, nil
		}

		if !errors.Is(err, jetstream.ErrKeyExists) {
			c.metrics.RecordWorkerClaim(false, attempts)
			c.logger.Error("virtual worker id claim failed", "worker_id", id, "error", err)

			return types.InvalidVirtualWorkerID, fmt.Errorf("claim virtual worker id %d: %w", id, err)
		}

		c.logger.Debug("virtual worker id already held", "worker_id", id)
		if id == c.ids.Last {
			break
		}
	}

	c.metrics.RecordWorkerClaim(false, attempts)
	c.logger.Error("no free virtual worker id", "first", c.ids.First, "last", c.ids.Last)

	return types.InvalidVirtualWorkerID, types.ErrNoAvailableWorkerID
}

// StartRenewal renews the lease every TTL/3 in a background goroutine.
//
// The loop stops on Release, when ctx is done, or when a renewal finds the lease
// taken over by another process. Connectivity failures are retried on the next tick.
// A takeover closes Lost and drops the claimed id.
//
// Returns:
//   - error: types.ErrNotClaimed before a successful Claim
func (c *Claimer) StartRenewal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.id.IsValid() {
		return types.ErrNotClaimed
	}
	if c.stopCh != nil {
		return nil
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.renewalLoop(ctx, c.stopCh, c.doneCh)

	return nil
}

func (c *Claimer) renewalLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(c.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			err := c.renew(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, types.ErrNotClaimed) {
				return
			}
			if natsutil.IsConnectivityError(err) {
				c.logger.Warn("virtual worker id lease renewal failed, retrying", "error", err)
				continue
			}
			c.markLost(err)

			return
		}
	}
}

// renew rewrites the lease, failing if another process now holds the key.
func (c *Claimer) renew(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.id.IsValid() {
		return types.ErrNotClaimed
	}

	revision, err := c.kv.Update(ctx, c.key(c.id), []byte(c.token), c.revision)
	if err != nil {
		return fmt.Errorf("renew virtual worker id %d: %w", c.id, err)
	}
	c.revision = revision
	c.logger.Debug("virtual worker id lease renewed", "worker_id", c.id, "revision", revision)

	return nil
}

// markLost records a takeover found by renewal and forgets the id.
func (c *Claimer) markLost(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lostErr != nil {
		return
	}

	c.logger.Error("virtual worker id lease lost", "worker_id", c.id, "error", cause)
	c.lostErr = fmt.Errorf("%w: %w", types.ErrLeaseLost, cause)
	c.id = types.InvalidVirtualWorkerID
	c.revision = 0
	c.stopCh, c.doneCh = nil, nil
	close(c.lostCh)
}

// Lost returns a channel closed when renewal finds the lease held by another process.
//
// Release and ctx cancellation do not close it.
func (c *Claimer) Lost() <-chan struct{} {
	return c.lostCh
}

// Err returns the takeover error once Lost is closed, or nil.
func (c *Claimer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lostErr
}

// Release stops renewal and deletes the lease so another process can claim the id.
//
// The key is only deleted if this claimer still holds it.
//
// Returns:
//   - error: types.ErrNotClaimed if nothing is held (including after a lost lease),
//     context or NATS error otherwise
func (c *Claimer) Release(ctx context.Context) error {
	c.mu.Lock()
	if !c.id.IsValid() {
		c.mu.Unlock()
		return types.ErrNotClaimed
	}
	stopCh, doneCh := c.stopCh, c.doneCh
	c.stopCh, c.doneCh = nil, nil
	c.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		select {
		case <-doneCh:
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(releaseWait):
			c.logger.Warn("renewal loop did not stop in time")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.id
	if !id.IsValid() {
		return types.ErrNotClaimed
	}
	err := c.kv.Delete(ctx, c.key(id), jetstream.LastRevision(c.revision))
	c.id = types.InvalidVirtualWorkerID
	c.revision = 0
	if err != nil {
		return fmt.Errorf("release virtual worker id %d: %w", id, err)
	}

	c.logger.Info("virtual worker id released", "worker_id", id)

	return nil
}

// ID returns the claimed id, or types.InvalidVirtualWorkerID.
func (c *Claimer) ID() types.VirtualWorkerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.id
}

// Token returns the session token stored as the lease value.
func (c *Claimer) Token() string {
	return c.token
}

// Key returns the lease key for id.
func (c *Claimer) Key(id types.VirtualWorkerID) string {
	return c.key(id)
}

func (c *Claimer) key(id types.VirtualWorkerID) string {
	return fmt.Sprintf("%s.%d", c.prefix, id)
}
