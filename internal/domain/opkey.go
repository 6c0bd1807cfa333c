package domain

import (
	"fmt"
	"time"
)

// Idempotency key builders. Every balance mutation in the system derives its
// key from the logical identity of the triggering operation, so a retry of
// the same operation always collides with its prior record.

// SchedulerKey identifies one accrual of one position for one period window.
func SchedulerKey(positionID string, periodEnd time.Time) string {
	return fmt.Sprintf("scheduler:%s:%d", positionID, periodEnd.Unix())
}

// DepositKey identifies an on-chain TON deposit by its transaction hash.
func DepositKey(txHash string) string {
	return fmt.Sprintf("deposit:%s", txHash)
}

// WithdrawKey identifies a withdrawal request.
func WithdrawKey(requestID string) string {
	return fmt.Sprintf("withdraw:%s", requestID)
}

// ReferralKey ties a referral credit to its originating reward entry,
// upline user, and level.
func ReferralKey(sourceRef string, uplineUserID int64, level int) string {
	return fmt.Sprintf("referral:%s:%d:%d", sourceRef, uplineUserID, level)
}

// BoostChargeKey identifies the debit half of a boost purchase.
func BoostChargeKey(requestID string) string {
	return fmt.Sprintf("boost:%s:charge", requestID)
}

// BoostBonusKey identifies the bonus credit half of a boost purchase.
func BoostBonusKey(requestID string) string {
	return fmt.Sprintf("boost:%s:bonus", requestID)
}

// FarmingDepositKey identifies the principal debit when opening a position.
func FarmingDepositKey(requestID string) string {
	return fmt.Sprintf("farming:%s:open", requestID)
}

// FarmingReturnKey identifies the principal return when closing a position.
func FarmingReturnKey(positionID string) string {
	return fmt.Sprintf("farming:%s:close", positionID)
}

// MissionKey identifies a one-time mission reward.
func MissionKey(missionID string, userID int64) string {
	return fmt.Sprintf("mission:%s:%d", missionID, userID)
}

// DailyBonusKey identifies one calendar day's bonus for a user.
func DailyBonusKey(userID int64, day time.Time) string {
	return fmt.Sprintf("daily:%d:%s", userID, day.UTC().Format("2006-01-02"))
}
