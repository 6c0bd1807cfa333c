package domain

import "github.com/shopspring/decimal"

// BoostPackage describes a purchasable farming boost. The catalog itself is
// owned by an external collaborator; the ledger only needs the price and the
// bonus credited on purchase.
type BoostPackage struct {
	ID        string
	Name      string
	Currency  Currency
	Price     decimal.Decimal
	BonusRate decimal.Decimal // fraction of price credited back as bonus
}

// Bonus returns the bonus amount credited after a successful charge.
func (p *BoostPackage) Bonus() decimal.Decimal {
	return p.Price.Mul(p.BonusRate)
}
