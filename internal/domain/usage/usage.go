// Package usage models generation token usage reports.
package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod maps a query value to a Period, defaulting to month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodDay:
		return PeriodDay
	case PeriodTotal:
		return PeriodTotal
	default:
		return PeriodMonth
	}
}

// Budget is a token budget snapshot.
type Budget struct {
	tokensLimit     int64
	tokensRemaining int64
	isExhausted     bool
	resetsAt        int64 // unix millis
}

// NewBudget creates a budget snapshot. A limit of 0 means unlimited.
func NewBudget(limit, remaining int64, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap.
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left (-1 when unlimited).
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis), 0 when unknown.
func (b Budget) ResetsAt() int64 { return b.resetsAt }

// Report is a generation usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	tokensUsed  int64
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, provider string, used int64, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		tokensUsed:  used,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the generation provider the budget applies to.
func (r *Report) Provider() string { return r.provider }

// TokensUsed returns tokens consumed in the period.
func (r *Report) TokensUsed() int64 { return r.tokensUsed }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
