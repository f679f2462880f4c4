// Package budget persists generation token counters as expiring Redis integers.
package budget

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default key lifetimes: a day key outlives its day, a month key its month.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

type counters interface {
	Counter(ctx context.Context, key string) (int64, error)
	IncrWithTTL(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}

// Store implements generation.BudgetStore on top of expiring counters.
type Store struct {
	counters counters
	dailyTTL time.Duration
	monthTTL time.Duration
}

// New creates a budget store. Zero TTLs fall back to the defaults.
func New(c counters, dailyTTL, monthTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	if monthTTL <= 0 {
		monthTTL = DefaultMonthlyTTL
	}
	return &Store{counters: c, dailyTTL: dailyTTL, monthTTL: monthTTL}
}

// IncrBy adds val to the counter. The period TTL is fixed by the first write.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if _, err := s.counters.IncrWithTTL(ctx, key, val, s.ttlForKey(key)); err != nil {
		return fmt.Errorf("budget incr %s: %w", key, err)
	}
	return nil
}

// Get returns the current counter value, 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	n, err := s.counters.Counter(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("budget get %s: %w", key, err)
	}
	return n, nil
}

// Keys look like {prefix}budget:{provider}:daily:2025-03-01 or ...:monthly:2025-03.
func (s *Store) ttlForKey(key string) time.Duration {
	if strings.Contains(key, ":daily:") {
		return s.dailyTTL
	}
	return s.monthTTL
}
