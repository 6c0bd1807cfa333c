package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownCurrency     = errors.New("unknown currency")

	// Mutation errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrDuplicateOperation  = errors.New("operation already processed")
	ErrConcurrencyConflict = errors.New("account version conflict")
	ErrMissingIdempotency  = errors.New("idempotency key is required")
	ErrEntryNotFound       = errors.New("ledger entry not found")

	// Farming errors
	ErrPositionNotFound = errors.New("farming position not found")
	ErrPositionInactive = errors.New("farming position is not active")

	// Referral errors
	ErrReferralCycle    = errors.New("referral upline contains a cycle")
	ErrSelfReferral     = errors.New("user cannot refer themselves")
	ErrAlreadyReferred  = errors.New("user already has a referrer")
	ErrReferrerNotFound = errors.New("referrer not found")

	// Boost errors
	ErrBoostPackageUnknown = errors.New("boost package not found")

	// Scheduler errors
	ErrSchedulerLockHeld = errors.New("scheduler lock held by another instance")
)
