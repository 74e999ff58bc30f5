// Package ratelimit throttles outbound calls to external search APIs.
//
// The limiter enforces two constraints at once: a ceiling on the number
// of calls inside any trailing window, and a minimum gap between
// consecutive calls. Callers may either block with Wait or query Delay
// and reschedule themselves.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config holds the limiter settings
type Config struct {
	// Window is the trailing interval over which MaxCalls applies
	Window time.Duration
	// MaxCalls is the ceiling on admissions inside any trailing Window
	MaxCalls int
	// MinInterval is the minimum gap between consecutive admissions
	MinInterval time.Duration
}

// Limiter admits calls subject to a trailing-window ceiling and a
// minimum inter-call interval. Safe for concurrent use.
type Limiter struct {
	cfg Config

	mu         sync.Mutex
	timestamps []time.Time
	lastCall   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a limiter with the given settings
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:   cfg,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Wait blocks until a call is permitted, then records the admission.
// Returns early with ctx.Err() if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		d := l.delayLocked(l.now())
		if d <= 0 {
			l.admitLocked(l.now())
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		l.sleep(d)
	}
}

// Delay returns how long a caller must wait before the next call is
// permitted. Zero means a call would be admitted now. Does not record
// an admission.
func (l *Limiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delayLocked(l.now())
}

// delayLocked evicts expired timestamps and computes the required wait.
// Caller must hold l.mu.
func (l *Limiter) delayLocked(now time.Time) time.Duration {
	// Drop timestamps older than the trailing window
	cutoff := now.Add(-l.cfg.Window)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept

	// Window ceiling: wait until the oldest recorded call expires
	if len(l.timestamps) >= l.cfg.MaxCalls {
		oldest := l.timestamps[0]
		if wait := l.cfg.Window - now.Sub(oldest); wait > 0 {
			return wait
		}
	}

	// Minimum gap since the last admitted call
	if !l.lastCall.IsZero() {
		if since := now.Sub(l.lastCall); since < l.cfg.MinInterval {
			return l.cfg.MinInterval - since
		}
	}

	return 0
}

// admitLocked records an admission. Caller must hold l.mu.
func (l *Limiter) admitLocked(now time.Time) {
	l.timestamps = append(l.timestamps, now)
	l.lastCall = now
}
