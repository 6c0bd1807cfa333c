package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxReferralLevels caps how deep the upline chain is materialized and
// traversed. Anything beyond this depth earns nothing.
const MaxReferralLevels = 20

// ReferralEdge links a user to one ancestor in their upline chain. The full
// chain (levels 1..20) is written once at registration and never mutated by
// reward processing.
type ReferralEdge struct {
	UserID       int64
	UplineUserID int64
	Level        int
	CreatedAt    time.Time
}

// CommissionTable holds the level-dependent referral commission
// configuration. BaseFraction is the share of the originating reward that
// enters the referral pool (e.g. 0.05); LevelRates[L-1] scales that share
// for level L (1.0 at level 1, decaying thereafter).
type CommissionTable struct {
	BaseFraction decimal.Decimal
	LevelRates   []decimal.Decimal
}

// DefaultCommissionTable returns the observed business rule: level 1 gets
// 100% of the base fraction, level L (2..20) gets L percent of it.
func DefaultCommissionTable() CommissionTable {
	rates := make([]decimal.Decimal, MaxReferralLevels)
	rates[0] = decimal.NewFromInt(1)
	for i := 1; i < MaxReferralLevels; i++ {
		rates[i] = decimal.NewFromInt(int64(i + 1)).Div(decimal.NewFromInt(100))
	}
	return CommissionTable{
		BaseFraction: decimal.NewFromFloat(0.05),
		LevelRates:   rates,
	}
}

// Levels returns how many levels the table pays out.
func (t CommissionTable) Levels() int {
	if len(t.LevelRates) > MaxReferralLevels {
		return MaxReferralLevels
	}
	return len(t.LevelRates)
}

// CommissionFor computes the commission for the given level (1-based).
// Levels outside the table earn zero.
func (t CommissionTable) CommissionFor(amount decimal.Decimal, level int) decimal.Decimal {
	if level < 1 || level > t.Levels() {
		return decimal.Zero
	}
	return amount.Mul(t.BaseFraction).Mul(t.LevelRates[level-1])
}
