package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// ExponentialBackoff doubles (by default) the delay after each retry, capped
// at a maximum and spread by a symmetric jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int

	// jitter of 0.1 spreads each delay by +/- 10%.
	jitter float64

	// random returns values in [0, 1). Nil means math/rand.
	random func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the jitter factor (0.0-1.0). Zero makes delays deterministic.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithRandom replaces the jitter source, mostly for tests.
func WithRandom(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff returns a strategy allowing maxAttempts retries after
// the initial attempt. A negative value retries until the context ends.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: benchload.DefaultRetryInitialDelay,
		maxDelay:     benchload.DefaultRetryMaxDelay,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns the wait before retry number attempt (zero based).
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	ms := float64(b.initialDelay.Milliseconds()) * math.Pow(b.multiplier, float64(attempt))
	if limit := float64(b.maxDelay.Milliseconds()); ms > limit {
		ms = limit
	}

	if b.jitter > 0 {
		random := b.random
		if random == nil {
			random = rand.Float64
		}
		// map [0,1) onto [-1,1)
		ms *= 1.0 + b.jitter*(random()-0.5)*2.0
	}

	return time.Duration(ms) * time.Millisecond
}

func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

var _ benchload.BackoffStrategy = (*ExponentialBackoff)(nil)
