package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrInvalidUserID  = errors.New("invalid user id")
)

// Validation constants
const (
	// MaxOperationAmount bounds any single credit or debit. Large enough for
	// every legitimate flow, small enough to catch corrupted inputs.
	MaxOperationAmount = "1000000000000" // 1 trillion
)

// ValidateAmount validates a credit/debit amount before any I/O.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}

// ValidateUserID validates a user identifier.
func ValidateUserID(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
