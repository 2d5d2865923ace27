// Package ratelimit throttles unauthenticated account endpoints per client.
// The in-memory Store uses a token bucket per client; RedisStore counts
// requests in fixed windows so several API instances share one budget.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket for one client in one category.
// Tokens are added at a fixed rate and each request consumes one.
type Limiter struct {
	tokens     float64
	lastTime   time.Time
	lastAccess time.Time
	rate       float64
	capacity   float64
	mu         sync.Mutex
}

// Rate controls how many requests are allowed.
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// PerMinute builds a Rate from a per-minute allowance.
func PerMinute(requests, burst int) Rate {
	return Rate{
		RequestsPerSecond: float64(requests) / 60,
		Burst:             burst,
	}
}

// NewLimiter creates a new rate limiter with the specified rate and burst capacity.
func NewLimiter(rate float64, burst int) *Limiter {
	now := time.Now()
	return &Limiter{
		tokens:     float64(burst),
		lastTime:   now,
		lastAccess: now,
		rate:       rate,
		capacity:   float64(burst),
	}
}

// Allow reports whether a request may proceed and consumes a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now
	l.lastAccess = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// RetryAfter estimates how long until the next token is available.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tokens >= 1 || l.rate <= 0 {
		return 0
	}
	return time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
}

// ResetTokens restores the bucket to full capacity.
func (l *Limiter) ResetTokens() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastTime = time.Now()
}

// idleSince reports whether the limiter has been unused since cutoff.
func (l *Limiter) idleSince(cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAccess.Before(cutoff)
}
