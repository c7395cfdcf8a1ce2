// Package ratelimit implements a fixed-window request quota per client
// identity. The window is approximate: a client can burst up to 2R-1 requests
// across a window boundary, which is acceptable for abuse deterrence.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per client identity within a trailing
// window. State lives only in process memory and is never persisted.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	seen   map[string][]time.Time
}

// New creates a limiter admitting at most limit requests per identity within
// each trailing window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		seen:   make(map[string][]time.Time),
	}
}

// Allow reports whether a request from identity is within quota, recording it
// if admitted. Purge and admit happen under one lock so two concurrent
// requests from the same identity cannot both slip past the quota.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	window := l.seen[identity][:0]
	for _, t := range l.seen[identity] {
		if t.After(cutoff) {
			window = append(window, t)
		}
	}

	if len(window) >= l.limit {
		l.seen[identity] = window
		return false
	}

	l.seen[identity] = append(window, now)
	return true
}

// Limit returns the configured per-window quota.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }
