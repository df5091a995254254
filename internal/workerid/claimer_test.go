package workerid

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/stratum/internal/kvutil"
	"github.com/arloliu/stratum/internal/metrics"
	stratumtest "github.com/arloliu/stratum/testing"
	"github.com/arloliu/stratum/types"
)

type claimRecorder struct {
	*metrics.NopMetrics
	success  int
	failure  int
	attempts []int
}

func (r *claimRecorder) RecordWorkerClaim(success bool, attempts int) {
	if success {
		r.success++
	} else {
		r.failure++
	}
	r.attempts = append(r.attempts, attempts)
}

func newLeaseBucket(t *testing.T, name string, ttl time.Duration) jetstream.KeyValue {
	t.Helper()

	js := stratumtest.StartEmbeddedJetStream(t)
	kv, err := kvutil.EnsureKVBucketWithRetry(t.Context(), js, kvutil.LeaseBucketConfig(name, ttl), 3)
	require.NoError(t, err)

	return kv
}

func TestClaimer_WithoutClaim(t *testing.T) {
	t.Parallel()

	c := NewClaimer(nil, types.WorkerRange{First: 1, Last: 3})
	require.Equal(t, types.InvalidVirtualWorkerID, c.ID())
	require.NotEmpty(t, c.Token())
	require.ErrorIs(t, c.StartRenewal(t.Context()), types.ErrNotClaimed)
	require.ErrorIs(t, c.Release(t.Context()), types.ErrNotClaimed)
}

func TestClaimer_InvalidRange(t *testing.T) {
	t.Parallel()

	for _, r := range []types.WorkerRange{{First: 0, Last: 3}, {First: 4, Last: 2}} {
		_, err := NewClaimer(nil, r).Claim(t.Context())
		require.ErrorIs(t, err, types.ErrInvalidWorkerRange)
	}
}

func TestClaimer_Key(t *testing.T) {
	t.Parallel()

	require.Equal(t, "vworker.7", NewClaimer(nil, types.WorkerRange{First: 1, Last: 1}).Key(7))
	require.Equal(t, "layer.7", NewClaimer(nil, types.WorkerRange{First: 1, Last: 1}, WithKeyPrefix("layer")).Key(7))
}

func TestClaimer_ClaimsLowestFreeID(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	kv := newLeaseBucket(t, "claim-lowest", time.Minute)
	ids := types.WorkerRange{First: 1, Last: 3}

	rec := &claimRecorder{NopMetrics: metrics.NewNop()}
	claimers := make([]*Claimer, 3)
	for i := range claimers {
		claimers[i] = NewClaimer(kv, ids, WithMetrics(rec), WithLogger(stratumtest.NewTestLogger(t)))
		id, err := claimers[i].Claim(ctx)
		require.NoError(t, err)
		require.Equal(t, types.VirtualWorkerID(i+1), id)
	}
	require.Equal(t, []int{1, 2, 3}, rec.attempts)

	// The lease value identifies the holder
	entry, err := kv.Get(ctx, claimers[1].Key(2))
	require.NoError(t, err)
	require.Equal(t, claimers[1].Token(), string(entry.Value()))

	// Claiming again returns the held id without touching KV
	id, err := claimers[0].Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, types.VirtualWorkerID(1), id)

	_, err = NewClaimer(kv, ids, WithMetrics(rec)).Claim(ctx)
	require.ErrorIs(t, err, types.ErrNoAvailableWorkerID)
	require.Equal(t, 3, rec.success)
	require.Equal(t, 1, rec.failure)
}

func TestClaimer_ReleaseFreesID(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	kv := newLeaseBucket(t, "claim-release", time.Minute)
	ids := types.WorkerRange{First: 5, Last: 6}

	first := NewClaimer(kv, ids)
	second := NewClaimer(kv, ids)

	id, err := first.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, types.VirtualWorkerID(5), id)
	require.NoError(t, first.StartRenewal(ctx))

	require.NoError(t, first.Release(ctx))
	require.Equal(t, types.InvalidVirtualWorkerID, first.ID())
	require.ErrorIs(t, first.Release(ctx), types.ErrNotClaimed)

	id, err = second.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, types.VirtualWorkerID(5), id)
}

func TestClaimer_RenewalKeepsLease(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping TTL test in short mode")
	}
	t.Parallel()

	ctx := t.Context()
	ttl := time.Second
	kv := newLeaseBucket(t, "claim-renewal", ttl)
	ids := types.WorkerRange{First: 1, Last: 1}

	holder := NewClaimer(kv, ids, WithTTL(ttl))
	_, err := holder.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, holder.StartRenewal(ctx))
	require.NoError(t, holder.StartRenewal(ctx), "second start is a no-op")

	time.Sleep(3 * ttl)

	_, err = NewClaimer(kv, ids).Claim(ctx)
	require.ErrorIs(t, err, types.ErrNoAvailableWorkerID)

	require.NoError(t, holder.Release(ctx))
}

func TestClaimer_LeaseExpiresWithoutRenewal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping TTL test in short mode")
	}
	t.Parallel()

	ctx := t.Context()
	ttl := time.Second
	kv := newLeaseBucket(t, "claim-expiry", ttl)
	ids := types.WorkerRange{First: 1, Last: 1}

	crashed := NewClaimer(kv, ids, WithTTL(ttl))
	_, err := crashed.Claim(ctx)
	require.NoError(t, err)

	successor := NewClaimer(kv, ids, WithTTL(ttl))
	require.Eventually(t, func() bool {
		id, err := successor.Claim(ctx)
		return err == nil && id == 1
	}, 10*ttl, 100*time.Millisecond)

	// The expired holder must not delete the successor's lease
	require.Error(t, crashed.Release(ctx))

	entry, err := kv.Get(ctx, successor.Key(1))
	require.NoError(t, err)
	require.Equal(t, successor.Token(), string(entry.Value()))
}

func TestClaimer_TakeoverClosesLost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping TTL test in short mode")
	}
	t.Parallel()

	ctx := t.Context()
	ttl := time.Second
	kv := newLeaseBucket(t, "claim-takeover", ttl)
	ids := types.WorkerRange{First: 1, Last: 1}

	holder := NewClaimer(kv, ids, WithTTL(ttl))
	_, err := holder.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, holder.StartRenewal(ctx))
	require.NoError(t, holder.Err())

	// Another writer overwrites the lease; the next renewal sees a new revision.
	_, err = kv.Put(ctx, holder.Key(1), []byte("other-process"))
	require.NoError(t, err)

	select {
	case <-holder.Lost():
	case <-time.After(5 * ttl):
		t.Fatal("lease takeover was not reported")
	}

	require.ErrorIs(t, holder.Err(), types.ErrLeaseLost)
	require.Equal(t, types.InvalidVirtualWorkerID, holder.ID())
	require.ErrorIs(t, holder.Release(ctx), types.ErrNotClaimed)

	_, err = holder.Claim(ctx)
	require.ErrorIs(t, err, types.ErrLeaseLost)

	entry, err := kv.Get(ctx, holder.Key(1))
	require.NoError(t, err)
	require.Equal(t, "other-process", string(entry.Value()))
}

func TestClaimer_ReleaseDoesNotCloseLost(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	kv := newLeaseBucket(t, "claim-release-lost", time.Minute)

	c := NewClaimer(kv, types.WorkerRange{First: 1, Last: 2}, WithTTL(time.Minute))
	_, err := c.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, c.StartRenewal(ctx))
	require.NoError(t, c.Release(ctx))

	select {
	case <-c.Lost():
		t.Fatal("Release must not report a lost lease")
	default:
	}
	require.NoError(t, c.Err())
}
