package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/storeassist/internal/domain/usage"
	"github.com/kailas-cloud/storeassist/internal/usecase/generation"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64
	var snap generation.BudgetSnapshot
	provider := ""
	if s.br != nil {
		provider = s.br.Provider()
	}

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			snap = s.br.Daily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			snap = s.br.Monthly()
		}
	default:
		// total has no bounds; the monthly counter is the widest persisted window
		if s.br != nil {
			snap = s.br.Monthly()
		}
	}

	if s.br == nil {
		snap.Remaining = -1
	}

	var resetsAt int64
	if !snap.ResetsAt.IsZero() {
		resetsAt = snap.ResetsAt.UnixMilli()
	}
	exhausted := snap.Limit > 0 && snap.Remaining <= 0

	b := domusage.NewBudget(snap.Limit, snap.Remaining, exhausted, resetsAt)
	return domusage.NewReport(period, start, end, provider, snap.Used, b)
}
