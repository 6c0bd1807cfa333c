package domain

import "fmt"

// Currency identifies one of the two balances a user can hold.
type Currency string

const (
	CurrencyUNI Currency = "UNI"
	CurrencyTON Currency = "TON"
)

// ParseCurrency validates a currency string.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyUNI, CurrencyTON:
		return Currency(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
}

func (c Currency) String() string {
	return string(c)
}
