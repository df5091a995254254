package stratum

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/stratum/internal/kvutil"
	"github.com/arloliu/stratum/internal/workerid"
)

// ProvisionOption configures Provision.
type ProvisionOption func(*provisionOptions)

type provisionOptions struct {
	bucket    string
	ttl       time.Duration
	timeout   time.Duration
	keyPrefix string
}

// WithLeaseBucket overrides the KV bucket holding id leases (default: Config.WorkerID.Bucket).
func WithLeaseBucket(bucket string) ProvisionOption {
	return func(o *provisionOptions) {
		o.bucket = bucket
	}
}

// WithLeaseTTL overrides the lease TTL (default: Config.WorkerID.TTL).
func WithLeaseTTL(ttl time.Duration) ProvisionOption {
	return func(o *provisionOptions) {
		o.ttl = ttl
	}
}

// WithLeaseKeyPrefix overrides the lease key prefix.
//
// Use a distinct prefix per world when several worlds share one bucket.
func WithLeaseKeyPrefix(prefix string) ProvisionOption {
	return func(o *provisionOptions) {
		o.keyPrefix = prefix
	}
}

// Lease is a virtual worker id claimed by Provision.
type Lease struct {
	claimer *workerid.Claimer
	id      VirtualWorkerID
	ranges  []LayerRange
}

// ID returns the claimed virtual worker id.
func (l *Lease) ID() VirtualWorkerID {
	return l.id
}

// Ranges returns the per-layer allocation the id was claimed from.
func (l *Lease) Ranges() []LayerRange {
	return l.ranges
}

// Done returns a channel closed when renewal finds the id leased by another process.
//
// From then on the id is no longer this worker's. Stop acting on authority decisions,
// for example by calling SetLocalVirtualWorkerID(InvalidVirtualWorkerID) on the
// strategy from its owning goroutine, and provision again if needed. Release and
// cancellation of the Provision context do not close it.
func (l *Lease) Done() <-chan struct{} {
	return l.claimer.Lost()
}

// Err returns an error wrapping ErrLeaseLost once Done is closed, or nil.
func (l *Lease) Err() error {
	return l.claimer.Err()
}

// Release stops renewal and frees the id for another process.
//
// Parameters:
//   - ctx: Context for timeout
//
// Returns:
//   - error: ErrNotClaimed if already released or lost, context or NATS error otherwise
func (l *Lease) Release(ctx context.Context) error {
	return l.claimer.Release(ctx)
}

// Provision runs the two-phase worker id protocol for an initialized strategy.
//
// It sizes the id range from MinimumRequiredWorkers, assigns [1, n] to the
// strategy, claims one free id in that range through a NATS KV lease, and makes
// it the strategy's local id. The lease is renewed in the background until
// Release is called or ctx is done. Watch Lease.Done to learn when another
// process has taken the id over.
//
// Every worker of a world must run Provision against the same bucket with the
// same configuration; each then ends up with a distinct id.
//
// Parameters:
//   - ctx: Lifetime of the lease renewal
//   - js: JetStream context
//   - s: Initialized layered strategy
//   - opts: Optional overrides (WithLeaseBucket, WithLeaseTTL, WithLeaseKeyPrefix)
//
// Returns:
//   - *Lease: Claimed id (the strategy is Ready on return)
//   - error: ErrNotInitialized, ErrNoWorkersRequired, ErrNoAvailableWorkerID, or a NATS error
//
// Example:
//
//	lease, err := stratum.Provision(ctx, js, ls)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lease.Release(context.Background())
func Provision(ctx context.Context, js jetstream.JetStream, s *LayeredStrategy, opts ...ProvisionOption) (*Lease, error) {
	if s == nil || s.State() < StateInitialized {
		return nil, ErrNotInitialized
	}

	options := provisionOptions{
		bucket:    s.cfg.WorkerID.Bucket,
		ttl:       s.cfg.WorkerID.TTL,
		timeout:   s.cfg.WorkerID.OperationTimeout,
		keyPrefix: workerid.DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(&options)
	}

	n := s.MinimumRequiredWorkers()
	if n == 0 {
		return nil, ErrNoWorkersRequired
	}

	ids := WorkerRange{First: 1, Last: VirtualWorkerID(n)}
	if err := s.SetVirtualWorkerIDs(ids.First, ids.Last); err != nil {
		return nil, fmt.Errorf("assign virtual worker ids: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	kv, err := kvutil.EnsureKVBucketWithRetry(opCtx, js, kvutil.LeaseBucketConfig(options.bucket, options.ttl), kvutil.DefaultMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("open lease bucket: %w", err)
	}

	claimer := workerid.NewClaimer(kv, ids,
		workerid.WithKeyPrefix(options.keyPrefix),
		workerid.WithTTL(options.ttl),
		workerid.WithLogger(s.logger),
		workerid.WithMetrics(s.metrics),
	)

	id, err := claimer.Claim(opCtx)
	if err != nil {
		return nil, err
	}

	if err := claimer.StartRenewal(ctx); err != nil {
		_ = claimer.Release(context.WithoutCancel(ctx))
		return nil, err
	}

	s.SetLocalVirtualWorkerID(id)
	layer, _ := s.LocalLayer()
	s.logger.Info("virtual worker id provisioned", "worker_id", id, "layer", layer, "required", n)

	return &Lease{claimer: claimer, id: id, ranges: s.Ranges()}, nil
}
