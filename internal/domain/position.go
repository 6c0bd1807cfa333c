package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FarmingPosition is a principal deposit that accrues income every period.
// The scheduler advances LastAccruedAt only after the matching credit has
// committed, so a crash between the two is retryable via the idempotency key.
type FarmingPosition struct {
	ID            string
	UserID        int64
	Currency      Currency
	Principal     decimal.Decimal
	RatePerPeriod decimal.Decimal
	LastAccruedAt time.Time
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PeriodsElapsed returns how many whole accrual periods have passed since
// LastAccruedAt, capped at maxPeriods (0 means uncapped).
func (p *FarmingPosition) PeriodsElapsed(now time.Time, period time.Duration, maxPeriods int64) int64 {
	if period <= 0 || !now.After(p.LastAccruedAt) {
		return 0
	}
	periods := int64(now.Sub(p.LastAccruedAt) / period)
	if maxPeriods > 0 && periods > maxPeriods {
		periods = maxPeriods
	}
	return periods
}

// AccruedIncome computes principal * rate_per_period * periods using
// fixed-point arithmetic only.
func (p *FarmingPosition) AccruedIncome(periods int64) decimal.Decimal {
	if periods <= 0 {
		return decimal.Zero
	}
	return p.Principal.Mul(p.RatePerPeriod).Mul(decimal.NewFromInt(periods))
}

// PeriodEnd returns the timestamp up to which income has been accrued after
// the given number of periods. Used both to advance LastAccruedAt and as the
// period component of the scheduler idempotency key.
func (p *FarmingPosition) PeriodEnd(period time.Duration, periods int64) time.Time {
	return p.LastAccruedAt.Add(period * time.Duration(periods))
}
