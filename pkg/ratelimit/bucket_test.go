package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(rate float64, burst int) (*Bucket, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBucket(rate, burst)
	b.now = clock.now
	b.lastUpdate = clock.t
	return b, clock
}

func TestNewBucket(t *testing.T) {
	t.Parallel()

	stats := NewBucket(50, 10).Stats()
	assert.Equal(t, 50.0, stats.Rate)
	assert.Equal(t, 10.0, stats.Max)
	assert.InDelta(t, 10, stats.Available, 0.1)

	assert.Equal(t, 25.0, NewBucket(25, 0).Stats().Max, "burst defaults to rate")
	assert.Equal(t, 1.0, NewBucket(0.5, 0).Stats().Max, "burst is at least one")
}

func TestAllow_RefillsOverTime(t *testing.T) {
	t.Parallel()
	b, clock := newTestBucket(2, 2)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "bucket is empty")

	clock.advance(500 * time.Millisecond)
	assert.True(t, b.Allow(), "one token after half a second at 2/s")
	assert.False(t, b.Allow())

	clock.advance(time.Hour)
	assert.InDelta(t, 2, b.Available(), 0.001, "refill caps at burst")
}

func TestWait_ReturnsImmediatelyWhenAvailable(t *testing.T) {
	t.Parallel()
	b := NewBucket(1, 1)

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_Paces(t *testing.T) {
	t.Parallel()
	b := NewBucket(50, 1)

	start := time.Now()
	for range 3 {
		require.NoError(t, b.Wait(context.Background()))
	}
	// The first token is free, the next two take 20ms each.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_Cancelled(t *testing.T) {
	t.Parallel()
	b := NewBucket(0.01, 1)
	require.True(t, b.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)
}

func TestNew(t *testing.T) {
	t.Parallel()

	assert.IsType(t, Unlimited{}, New(0))
	assert.IsType(t, &Bucket{}, New(5))

	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, Unlimited{}.Wait(ctx))
	cancel()
	assert.ErrorIs(t, Unlimited{}.Wait(ctx), context.Canceled)
}
