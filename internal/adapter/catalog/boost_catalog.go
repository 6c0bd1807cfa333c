package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// StaticBoostCatalog serves boost packages from a fixed table. Package
// definitions change with releases, not at runtime, so a static table is
// enough until a boost service owns them.
type StaticBoostCatalog struct {
	packages map[string]*domain.BoostPackage
}

// NewStaticBoostCatalog creates a catalog from the given packages. With no
// packages it falls back to the default set.
func NewStaticBoostCatalog(packages ...*domain.BoostPackage) *StaticBoostCatalog {
	if len(packages) == 0 {
		packages = defaultPackages()
	}

	byID := make(map[string]*domain.BoostPackage, len(packages))
	for _, p := range packages {
		byID[p.ID] = p
	}

	return &StaticBoostCatalog{packages: byID}
}

// GetPackage returns the package by ID.
func (c *StaticBoostCatalog) GetPackage(_ context.Context, packageID string) (*domain.BoostPackage, error) {
	p, ok := c.packages[packageID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrBoostPackageUnknown, packageID)
	}
	return p, nil
}

func defaultPackages() []*domain.BoostPackage {
	return []*domain.BoostPackage{
		{
			ID:        "starter",
			Name:      "Starter Boost",
			Currency:  domain.CurrencyUNI,
			Price:     decimal.NewFromInt(100),
			BonusRate: decimal.NewFromFloat(0.05),
		},
		{
			ID:        "pro",
			Name:      "Pro Boost",
			Currency:  domain.CurrencyUNI,
			Price:     decimal.NewFromInt(500),
			BonusRate: decimal.NewFromFloat(0.10),
		},
		{
			ID:        "max",
			Name:      "Max Boost",
			Currency:  domain.CurrencyUNI,
			Price:     decimal.NewFromInt(2500),
			BonusRate: decimal.NewFromFloat(0.15),
		},
	}
}
