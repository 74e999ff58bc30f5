package ratelimit

import "time"

// Backoff computes waits after a server-signaled rate-limit error
type Backoff struct {
	// Base is the first exponential backoff step
	Base time.Duration
	// Cap is the upper bound on any computed wait
	Cap time.Duration
}

// DefaultBackoff matches the reference behavior: 60s base, 300s cap
func DefaultBackoff() Backoff {
	return Backoff{Base: time.Minute, Cap: 5 * time.Minute}
}

// Next returns the wait for the given zero-based attempt:
// min(Base * 2^attempt, Cap).
func (b Backoff) Next(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Cap {
			return b.Cap
		}
	}
	if d > b.Cap {
		return b.Cap
	}
	return d
}

// Until returns the wait implied by a server-provided reset time when it
// is in the future, otherwise the exponential fallback for the attempt.
func (b Backoff) Until(reset time.Time, now time.Time, attempt int) time.Duration {
	if !reset.IsZero() {
		if wait := reset.Sub(now); wait > 0 {
			return wait
		}
	}
	return b.Next(attempt)
}
