package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend decides whether a client may make another request in a category.
type Backend interface {
	Allow(ctx context.Context, category, clientID string) (bool, error)
	Close() error
}

// defaultCategory is used when a category has no rate of its own.
const defaultCategory = "default"

// Store keeps one token bucket per client and category in memory.
type Store struct {
	limiters map[string]*Limiter
	rates    map[string]Rate
	mu       sync.RWMutex

	cleanupInterval time.Duration
	idleExpiration  time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewStore creates a store and starts its cleanup goroutine.
// Limiters unused for idleExpiration are dropped every cleanupInterval.
func NewStore(defaultRate Rate, cleanupInterval, idleExpiration time.Duration) *Store {
	store := &Store{
		limiters:        make(map[string]*Limiter),
		rates:           map[string]Rate{defaultCategory: defaultRate},
		cleanupInterval: cleanupInterval,
		idleExpiration:  idleExpiration,
		stop:            make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go store.cleanupRoutine()
	}

	return store
}

// GetLimiter returns the limiter for a client in a category, creating it on first use.
func (s *Store) GetLimiter(clientID, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have created it between the locks.
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[defaultCategory]
	}

	limiter = NewLimiter(rate.RequestsPerSecond, rate.Burst)
	s.limiters[key] = limiter
	return limiter
}

// Allow implements Backend.
func (s *Store) Allow(_ context.Context, category, clientID string) (bool, error) {
	return s.GetLimiter(clientID, category).Allow(), nil
}

// SetRate sets a rate limit for a specific category.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Close stops the cleanup goroutine.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *Store) cleanupRoutine() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stop:
			return
		}
	}
}

// cleanup removes limiters idle since before now minus idleExpiration.
func (s *Store) cleanup(now time.Time) int {
	cutoff := now.Add(-s.idleExpiration)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.idleSince(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(s.limiters)).Msg("Expired idle rate limiters")
	}
	return removed
}
