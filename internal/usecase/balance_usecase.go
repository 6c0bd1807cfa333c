package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// BalanceUseCase is the single choke-point for balance mutations. Every
// credit and debit commits the ledger entry, the projection update, and the
// idempotency record in one database transaction.
type BalanceUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	entryRepo       EntryRepository
	idempotencyRepo IdempotencyRepository
	idGen           IDGenerator
	retrier         Retrier
	cache           Cache
	cacheTTL        time.Duration
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil.
func NewBalanceUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idempotencyRepo IdempotencyRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	cacheTTL time.Duration,
) *BalanceUseCase {
	if cacheTTL == 0 {
		cacheTTL = DefaultBalanceCacheTTL
	}
	return &BalanceUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		entryRepo:       entryRepo,
		idempotencyRepo: idempotencyRepo,
		idGen:           idGen,
		retrier:         retrier,
		cache:           cache,
		cacheTTL:        cacheTTL,
	}
}

// MutationInput represents input for a credit or debit. Amount is the
// positive magnitude; the operation decides the sign.
type MutationInput struct {
	UserID         int64
	Currency       domain.Currency
	Amount         decimal.Decimal
	Type           domain.EntryType
	IdempotencyKey string
	SourceRef      string
	// InTx, when set, runs inside the mutation's transaction after the
	// balance write. Writes that must commit or roll back together with the
	// entry go here. Skipped on replay: the original transaction already
	// carried them.
	InTx func(ctx context.Context, tx Transaction) error
}

// MutationResult carries the produced (or replayed) ledger entry.
type MutationResult struct {
	Entry    *domain.Entry
	Replayed bool
}

// Credit increases the user's balance. A repeated idempotency key returns
// the prior entry with Replayed set, producing no second balance delta.
func (uc *BalanceUseCase) Credit(ctx context.Context, input MutationInput) (*MutationResult, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, input, input.Amount)
}

// Debit decreases the user's balance, failing with ErrInsufficientBalance
// when the balance would go negative. The check and the mutation happen
// under the same row lock.
func (uc *BalanceUseCase) Debit(ctx context.Context, input MutationInput) (*MutationResult, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, input, input.Amount.Neg())
}

// AdjustInput represents a signed manual correction.
type AdjustInput struct {
	UserID         int64
	Currency       domain.Currency
	Delta          decimal.Decimal
	IdempotencyKey string
	Reason         string
}

// Adjust records a correction as an ordinary ADJUSTMENT entry. Corrections
// never overwrite balances directly.
func (uc *BalanceUseCase) Adjust(ctx context.Context, input AdjustInput) (*MutationResult, error) {
	if input.Delta.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(input.Delta.Abs()); err != nil {
		return nil, err
	}
	mi := MutationInput{
		UserID:         input.UserID,
		Currency:       input.Currency,
		Amount:         input.Delta.Abs(),
		Type:           domain.EntryAdjustment,
		IdempotencyKey: input.IdempotencyKey,
		SourceRef:      input.Reason,
	}
	if err := validateMutation(mi); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, mi, input.Delta)
}

// GetBalance returns the current projection. Absent accounts read as zero
// since accounts are created lazily on first mutation. The cached value is
// advisory only and must never authorize a debit.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, userID int64, currency domain.Currency) (decimal.Decimal, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return decimal.Zero, err
	}

	cacheKey := balanceCacheKey(userID, currency)
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil && len(raw) > 0 {
			if d, perr := decimal.NewFromString(string(raw)); perr == nil {
				return d, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByUser(ctx, userID, currency)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, []byte(account.Balance.String()), uc.cacheTTL)
	}

	return account.Balance, nil
}

// GetBalances returns all balances held by the user.
func (uc *BalanceUseCase) GetBalances(ctx context.Context, userID int64) ([]*domain.Account, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return uc.accountRepo.ListByUser(ctx, userID)
}

func (uc *BalanceUseCase) mutate(ctx context.Context, input MutationInput, signed decimal.Decimal) (*MutationResult, error) {
	var result *MutationResult

	err := uc.retrier.Retry(ctx, func() error {
		res, err := uc.attempt(ctx, input, signed)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed && uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(input.UserID, input.Currency))
	}

	return result, nil
}

// attempt runs one transactional mutation. The idempotency reservation, the
// entry insert, and the balance CAS all ride the same transaction; no
// partial state is observable.
func (uc *BalanceUseCase) attempt(ctx context.Context, input MutationInput, signed decimal.Decimal) (*MutationResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	entryID := uc.idGen.Generate()

	existing, err := uc.idempotencyRepo.Reserve(ctx, tx, &domain.IdempotencyRecord{
		Key:       input.IdempotencyKey,
		EntryID:   entryID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		entry, err := uc.entryRepo.GetByIDTx(ctx, tx, existing.EntryID)
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", input.IdempotencyKey, err)
		}
		return &MutationResult{Entry: entry, Replayed: true}, nil
	}

	account, err := uc.lockOrCreateAccount(ctx, tx, input.UserID, input.Currency, now)
	if err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(signed)
	if newBalance.IsNegative() {
		return nil, domain.ErrInsufficientBalance
	}

	entry := &domain.Entry{
		ID:              entryID,
		AccountID:       account.ID,
		UserID:          input.UserID,
		Currency:        input.Currency,
		Type:            input.Type,
		Amount:          signed,
		IdempotencyKey:  input.IdempotencyKey,
		SourceRef:       input.SourceRef,
		PreviousBalance: account.Balance,
		CurrentBalance:  newBalance,
		AccountVersion:  account.Version + 1,
		CreatedAt:       now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, account.Version, now); err != nil {
		return nil, err
	}

	if input.InTx != nil {
		if err := input.InTx(ctx, tx); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &MutationResult{Entry: entry}, nil
}

// lockOrCreateAccount loads the account under a row lock, creating it lazily
// on first use. A concurrent first-use insert surfaces as a version conflict
// and is retried, at which point the row exists and locks normally.
func (uc *BalanceUseCase) lockOrCreateAccount(ctx context.Context, tx Transaction, userID int64, currency domain.Currency, now time.Time) (*domain.Account, error) {
	account, err := uc.accountRepo.GetForUpdate(ctx, tx, userID, currency)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	account = &domain.Account{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		Currency:  currency,
		Balance:   decimal.Zero,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	return account, nil
}

func validateMutation(input MutationInput) error {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return err
	}
	if _, err := domain.ParseCurrency(string(input.Currency)); err != nil {
		return err
	}
	if input.IdempotencyKey == "" {
		return domain.ErrMissingIdempotency
	}
	if _, err := domain.ParseEntryType(string(input.Type)); err != nil {
		return err
	}
	return domain.ValidateAmount(input.Amount)
}

func balanceCacheKey(userID int64, currency domain.Currency) string {
	return fmt.Sprintf("balance:%d:%s", userID, currency)
}
