package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry. The set is closed: every balance
// mutation in the system carries exactly one of these tags.
type EntryType string

const (
	EntryFarmingReward  EntryType = "FARMING_REWARD"
	EntryReferralReward EntryType = "REFERRAL_REWARD"
	EntryBoostPurchase  EntryType = "BOOST_PURCHASE"
	EntryBoostBonus     EntryType = "BOOST_BONUS"
	EntryDeposit        EntryType = "DEPOSIT"
	EntryWithdrawal     EntryType = "WITHDRAWAL"
	EntryFarmingDeposit EntryType = "FARMING_DEPOSIT"
	EntryFarmingReturn  EntryType = "FARMING_RETURN"
	EntryMissionReward  EntryType = "MISSION_REWARD"
	EntryDailyBonus     EntryType = "DAILY_BONUS"
	EntryAdjustment     EntryType = "ADJUSTMENT"
)

// ParseEntryType validates an entry type string.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryFarmingReward, EntryReferralReward, EntryBoostPurchase,
		EntryBoostBonus, EntryDeposit, EntryWithdrawal,
		EntryFarmingDeposit, EntryFarmingReturn,
		EntryMissionReward, EntryDailyBonus, EntryAdjustment:
		return EntryType(s), nil
	default:
		return "", fmt.Errorf("unknown entry type: %q", s)
	}
}

// Entry is an immutable ledger record. Amount is signed: credits are
// positive, debits negative. Corrections are new offsetting entries,
// never updates.
type Entry struct {
	ID              string
	AccountID       string
	UserID          int64
	Currency        Currency
	Type            EntryType
	Amount          decimal.Decimal
	IdempotencyKey  string
	SourceRef       string
	PreviousBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
	AccountVersion  int64
	CreatedAt       time.Time
}

// IsCredit reports whether the entry increased the balance.
func (e *Entry) IsCredit() bool {
	return e.Amount.IsPositive()
}
