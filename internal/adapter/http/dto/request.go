package dto

import (
	"github.com/shopspring/decimal"
)

// OpenPositionRequest represents a request to open a farming position.
type OpenPositionRequest struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	RequestID string          `json:"request_id"`
}

// TONDepositRequest represents a confirmed on-chain TON deposit.
type TONDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	TxHash string          `json:"tx_hash"`
}

// WithdrawRequest represents a withdrawal request.
type WithdrawRequest struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	RequestID string          `json:"request_id"`
}

// PurchaseBoostRequest represents a boost package purchase.
type PurchaseBoostRequest struct {
	PackageID string `json:"package_id"`
	RequestID string `json:"request_id"`
}

// RegisterReferralRequest binds the authenticated user to a referrer.
type RegisterReferralRequest struct {
	ReferrerID int64 `json:"referrer_id"`
}

// MissionRewardRequest represents a mission completion reward grant.
type MissionRewardRequest struct {
	UserID    int64           `json:"user_id"`
	MissionID string          `json:"mission_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
}

// DailyBonusRequest represents a daily bonus grant.
type DailyBonusRequest struct {
	UserID   int64           `json:"user_id"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// AdjustmentRequest represents a manual balance correction.
type AdjustmentRequest struct {
	UserID         int64           `json:"user_id"`
	Currency       string          `json:"currency"`
	Delta          decimal.Decimal `json:"delta"`
	IdempotencyKey string          `json:"idempotency_key"`
	Reason         string          `json:"reason"`
}
