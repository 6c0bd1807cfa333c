package usecase

import (
	"context"

	"github.com/unifarm/ledger/internal/domain"
)

// BoostUseCase handles boost package purchases: one debit for the price and,
// when the package carries a bonus, one credit back. Both halves are
// idempotent on the purchase request ID.
type BoostUseCase struct {
	balanceUC BalanceMutator
	catalog   BoostCatalog
}

// NewBoostUseCase creates a new BoostUseCase.
func NewBoostUseCase(balanceUC BalanceMutator, catalog BoostCatalog) *BoostUseCase {
	return &BoostUseCase{balanceUC: balanceUC, catalog: catalog}
}

// PurchaseResult carries both halves of the purchase.
type PurchaseResult struct {
	Package  *domain.BoostPackage
	Charge   *domain.Entry
	Bonus    *domain.Entry
	Replayed bool
}

// Purchase charges the package price and credits the bonus. A retried
// request replays the charge; the bonus credit runs on every attempt so a
// crash between the two halves heals on retry.
func (uc *BoostUseCase) Purchase(ctx context.Context, userID int64, packageID, requestID string) (*PurchaseResult, error) {
	if requestID == "" {
		return nil, domain.ErrMissingIdempotency
	}

	pkg, err := uc.catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	charge, err := uc.balanceUC.Debit(ctx, MutationInput{
		UserID:         userID,
		Currency:       pkg.Currency,
		Amount:         pkg.Price,
		Type:           domain.EntryBoostPurchase,
		IdempotencyKey: domain.BoostChargeKey(requestID),
		SourceRef:      pkg.ID,
	})
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{
		Package:  pkg,
		Charge:   charge.Entry,
		Replayed: charge.Replayed,
	}

	bonus := pkg.Bonus()
	if bonus.IsPositive() {
		res, err := uc.balanceUC.Credit(ctx, MutationInput{
			UserID:         userID,
			Currency:       pkg.Currency,
			Amount:         bonus,
			Type:           domain.EntryBoostBonus,
			IdempotencyKey: domain.BoostBonusKey(requestID),
			SourceRef:      charge.Entry.ID,
		})
		if err != nil {
			return nil, err
		}
		result.Bonus = res.Entry
	}

	return result, nil
}
