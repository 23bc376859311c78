package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 10, Burst: 5})

	allowed := 0
	for i := 0; i < 10; i++ {
		if lim.Allow() {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed, "burst caps immediate requests")
}

func TestLimiter_Refill(t *testing.T) {
	now := time.Now()
	lim := New(Config{RequestsPerSecond: 2, Burst: 1})
	lim.now = func() time.Time { return now }
	lim.last = now

	require.True(t, lim.Allow())
	require.False(t, lim.Allow())

	now = now.Add(600 * time.Millisecond)
	assert.True(t, lim.Allow(), "one token is due after half a second")
}

func TestLimiter_ZeroRateUnlimited(t *testing.T) {
	lim := New(Config{})
	for i := 0; i < 100; i++ {
		require.True(t, lim.Allow())
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 0.01, Burst: 1})
	require.True(t, lim.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, lim.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_WaitUntilRefill(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 100, Burst: 1})
	require.True(t, lim.Allow())

	start := time.Now()
	require.NoError(t, lim.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestManager_SameKeySameLimiter(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 1, Burst: 1})

	var wg sync.WaitGroup
	got := make([]*Limiter, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = m.GetLimiter("www.realmofthemadgod.com")
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.NotSame(t, got[0], m.GetLimiter("other"))
}

func TestManager_WaitConsumesToken(t *testing.T) {
	m := NewManager(Config{RequestsPerSecond: 0.01, Burst: 1})

	require.NoError(t, m.Wait(context.Background(), "host"))
	assert.False(t, m.GetLimiter("host").Allow(), "bucket drained by Wait")
}
