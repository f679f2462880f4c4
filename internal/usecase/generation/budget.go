package generation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
)

// BudgetAction defines behavior when the token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetLimits caps token spend per period. Zero means unlimited.
type BudgetLimits struct {
	Daily   int64
	Monthly int64
}

// BudgetStore is the persistence interface for budget counters.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetSnapshot is a consistent read of one period's counters.
type BudgetSnapshot struct {
	Limit     int64
	Used      int64
	Remaining int64 // -1 when unlimited
	ResetsAt  time.Time
}

// BudgetTracker counts generation tokens in memory and writes behind to an optional store.
// Check never leaves the process.
type BudgetTracker struct {
	mu          sync.Mutex
	limits      BudgetLimits
	action      BudgetAction
	provider    string
	keyPrefix   string
	dailyUsed   int64
	monthlyUsed int64
	day         time.Time
	month       time.Time
	store       BudgetStore
	now         func() time.Time
	logger      *zap.Logger
}

// NewBudgetTracker creates a tracker for one provider.
func NewBudgetTracker(provider string, limits BudgetLimits, action BudgetAction, logger *zap.Logger) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &BudgetTracker{
		limits:    limits,
		action:    action,
		provider:  provider,
		keyPrefix: domain.KeyPrefix,
		now:       time.Now,
		logger:    logger,
	}
	now := b.now().UTC()
	b.day, b.month = truncateToDay(now), truncateToMonth(now)
	return b
}

// WithKeyPrefix overrides the storage key prefix.
func (b *BudgetTracker) WithKeyPrefix(prefix string) *BudgetTracker {
	if prefix != "" {
		b.keyPrefix = prefix
	}
	return b
}

// WithStore attaches persistence and loads the current period's counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now().UTC()

	if val, err := store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = val
	} else {
		b.logger.Warn("Failed to load daily generation budget", zap.Error(err))
	}
	if val, err := store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = val
	} else {
		b.logger.Warn("Failed to load monthly generation budget", zap.Error(err))
	}

	b.logger.Info("Generation budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
	return b
}

// Provider returns the provider the budget applies to.
func (b *BudgetTracker) Provider() string { return b.provider }

// Check reports whether a new request may proceed.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()

	dailyExceeded := b.limits.Daily > 0 && b.dailyUsed >= b.limits.Daily
	monthlyExceeded := b.limits.Monthly > 0 && b.monthlyUsed >= b.limits.Monthly
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrGenerationQuotaExceeded
	}

	b.logger.Warn("Generation token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.limits.Daily),
		zap.Int64("monthly_used", b.monthlyUsed),
		zap.Int64("monthly_limit", b.limits.Monthly),
	)
	return nil
}

// Record adds consumed tokens, then persists them best-effort.
func (b *BudgetTracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	b.rollover()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	store := b.store
	now := b.now().UTC()
	dailyKey, monthlyKey := b.dailyKey(now), b.monthlyKey(now)
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request: a canceled caller must not lose the count.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist daily generation budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist monthly generation budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// Daily returns today's counters.
func (b *BudgetTracker) Daily() BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return snapshot(b.limits.Daily, b.dailyUsed, b.day.AddDate(0, 0, 1))
}

// Monthly returns this month's counters.
func (b *BudgetTracker) Monthly() BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return snapshot(b.limits.Monthly, b.monthlyUsed, b.month.AddDate(0, 1, 0))
}

func snapshot(limit, used int64, resetsAt time.Time) BudgetSnapshot {
	remaining := int64(-1)
	if limit > 0 {
		remaining = max(limit-used, 0)
	}
	return BudgetSnapshot{Limit: limit, Used: used, Remaining: remaining, ResetsAt: resetsAt}
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", b.keyPrefix, b.provider, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", b.keyPrefix, b.provider, t.Format("2006-01"))
}

// rollover zeroes counters when the day or month changes. Caller holds mu.
func (b *BudgetTracker) rollover() {
	now := b.now().UTC()
	if today := truncateToDay(now); today.After(b.day) {
		b.dailyUsed = 0
		b.day = today
	}
	if thisMonth := truncateToMonth(now); thisMonth.After(b.month) {
		b.monthlyUsed = 0
		b.month = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
