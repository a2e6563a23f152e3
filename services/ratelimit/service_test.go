package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	if f.counts[key] == 1 {
		f.ttls[key] = ttl
	}
	return f.counts[key], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestKey(t *testing.T) {
	orgID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	at := time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)

	assert.Equal(t, "ratelimit:org:11111111-1111-1111-1111-111111111111:2024011514", Key(orgID, at))

	local := time.Date(2024, 1, 15, 11, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, Key(orgID, at), Key(orgID, local), "keys are computed in UTC")
}

func TestRateLimitService_Counter(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2024, 1, 15, 14, 30, 45, 0, time.UTC)

	counter := newFakeCounter()
	svc := NewRateLimitService(counter, Config{GenerationsPerHour: 3}, zap.NewNop())
	svc.now = fixedClock(now)

	for i := 1; i <= 3; i++ {
		res := svc.Allow(ctx, orgID)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res := svc.Allow(ctx, orgID)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC), res.ResetAt)
	assert.Equal(t, Window, counter.ttls[Key(orgID, now)])

	t.Run("next window starts over", func(t *testing.T) {
		svc.now = fixedClock(now.Add(time.Hour))
		assert.True(t, svc.Allow(ctx, orgID).Allowed)
	})

	t.Run("organizations are independent", func(t *testing.T) {
		svc.now = fixedClock(now)
		assert.True(t, svc.Allow(ctx, uuid.New()).Allowed)
	})
}

func TestRateLimitService_LocalFallback(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)

	t.Run("no counter", func(t *testing.T) {
		svc := NewRateLimitService(nil, Config{GenerationsPerHour: 60, LocalBurst: 2}, zap.NewNop())
		svc.now = fixedClock(now)

		assert.True(t, svc.Allow(ctx, orgID).Allowed)
		assert.True(t, svc.Allow(ctx, orgID).Allowed)
		assert.False(t, svc.Allow(ctx, orgID).Allowed, "burst exhausted")

		// refills at one per minute
		svc.now = fixedClock(now.Add(2 * time.Minute))
		assert.True(t, svc.Allow(ctx, orgID).Allowed)
	})

	t.Run("counter failure", func(t *testing.T) {
		counter := newFakeCounter()
		counter.err = errors.New("connection refused")
		svc := NewRateLimitService(counter, Config{GenerationsPerHour: 60, LocalBurst: 1}, zap.NewNop())
		svc.now = fixedClock(now)

		assert.True(t, svc.Allow(ctx, orgID).Allowed)
		assert.False(t, svc.Allow(ctx, orgID).Allowed)
	})
}

func TestRateLimitService_Disabled(t *testing.T) {
	svc := NewRateLimitService(nil, Config{}, zap.NewNop())
	for i := 0; i < 100; i++ {
		require.True(t, svc.Allow(context.Background(), uuid.New()).Allowed)
	}
}

func TestRateLimitService_Check(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc := NewRateLimitService(newFakeCounter(), Config{GenerationsPerHour: 1}, zap.NewNop())
	svc.now = fixedClock(time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC))

	require.NoError(t, svc.Check(ctx, orgID))

	err := svc.Check(ctx, orgID)
	require.Error(t, err)
	assert.True(t, services.IsRateLimitError(err))
	assert.ErrorIs(t, err, services.ErrRateLimitExceeded)
	details := services.GetErrorDetails(err)
	assert.Equal(t, 1, details["limit"])
	assert.Equal(t, "2024-01-15T15:00:00Z", details["reset_at"])
}

func TestRateLimitService_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(nil, Config{GenerationsPerHour: 10}, zap.NewNop())

	svc.now = fixedClock(now)
	svc.Allow(context.Background(), uuid.New())
	svc.now = fixedClock(now.Add(9 * time.Minute))
	svc.Allow(context.Background(), uuid.New())

	svc.now = fixedClock(now.Add(15 * time.Minute))
	assert.Equal(t, 1, svc.Cleanup(10*time.Minute))
	assert.Len(t, svc.buckets, 1)
}
