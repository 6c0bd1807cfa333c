package usecase

import (
	"context"
	"errors"

	"github.com/unifarm/ledger/internal/domain"
)

// EntryUseCase handles ledger entry reads.
type EntryUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository, accountRepo AccountRepository) *EntryUseCase {
	return &EntryUseCase{entryRepo: entryRepo, accountRepo: accountRepo}
}

// ListByAccountInput represents input for listing entries.
type ListByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists entries for an account, newest first.
func (uc *EntryUseCase) ListByAccount(ctx context.Context, input ListByAccountInput) ([]*domain.Entry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// ListByUser lists entries for the user's account in the given currency,
// newest first. A user without an account yet has no entries.
func (uc *EntryUseCase) ListByUser(ctx context.Context, userID int64, currency domain.Currency, limit, offset int) ([]*domain.Entry, error) {
	account, err := uc.accountRepo.GetByUser(ctx, userID, currency)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return []*domain.Entry{}, nil
		}
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.entryRepo.ListByAccount(ctx, account.ID, limit, offset)
}

// GetEntry retrieves a single entry.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}
