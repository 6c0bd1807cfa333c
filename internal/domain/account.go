package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the materialized balance projection for one (user, currency)
// pair. It is mutated only through the balance manager; the ledger entries
// for the account are the source of truth and must always sum to Balance.
type Account struct {
	ID        string
	UserID    int64
	Currency  Currency
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks if the account can be debited by amount.
// User balances are never allowed to go negative.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
