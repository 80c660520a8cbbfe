// Package ratelimit paces outgoing API calls with a token bucket, so bulk
// commands such as record import stay under the server's request limits.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket is a single token bucket rate limiter.
// It is safe for concurrent use.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	rate       float64 // tokens per second
	lastUpdate time.Time
	now        func() time.Time
}

// BucketStats contains token bucket statistics.
type BucketStats struct {
	Available float64 `json:"available"`
	Max       float64 `json:"max"`
	Rate      float64 `json:"rate"`
}

// NewBucket creates a token bucket with the given rate (tokens/second) and
// burst (maximum tokens). The bucket starts full. A burst of 0 means one
// second worth of tokens.
func NewBucket(rate float64, burst int) *Bucket {
	maxTokens := float64(burst)
	if maxTokens <= 0 {
		maxTokens = rate
	}
	if maxTokens < 1 {
		maxTokens = 1
	}
	b := &Bucket{
		tokens:    maxTokens,
		maxTokens: maxTokens,
		rate:      rate,
		now:       time.Now,
	}
	b.lastUpdate = b.now()
	return b
}

// refill adds tokens based on elapsed time. Caller must hold b.mu.
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens += elapsed * b.rate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastUpdate = now
}

// Allow tries to consume one token. Returns true if a token was available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(b.now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is cancelled.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.refill(b.now())
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current number of tokens (including time-based refill).
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(b.now())
	return b.tokens
}

// Stats returns the current bucket statistics.
func (b *Bucket) Stats() BucketStats {
	return BucketStats{
		Available: b.Available(),
		Max:       b.maxTokens,
		Rate:      b.rate,
	}
}

// Limiter paces callers.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Unlimited is a Limiter that never waits.
type Unlimited struct{}

// Wait returns ctx's error, if any.
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

// New returns a Limiter allowing rate calls per second, or Unlimited when
// rate is not positive.
func New(rate float64) Limiter {
	if rate <= 0 {
		return Unlimited{}
	}
	return NewBucket(rate, 1)
}
