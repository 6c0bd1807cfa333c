package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
	"github.com/unifarm/ledger/internal/usecase/mocks"
)

type balanceFixture struct {
	uc          *usecase.BalanceUseCase
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
	idemRepo    *mocks.MockIdempotencyRepository
	cache       *mocks.MockCache
}

func newBalanceFixture() *balanceFixture {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	idemRepo := mocks.NewMockIdempotencyRepository()
	cache := mocks.NewMockCache()

	uc := usecase.NewBalanceUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		idemRepo,
		&mocks.MockIDGenerator{},
		&mocks.MockRetrier{},
		cache,
		time.Minute,
	)

	return &balanceFixture{
		uc:          uc,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idemRepo:    idemRepo,
		cache:       cache,
	}
}

func seedAccount(repo *mocks.MockAccountRepository, userID int64, currency domain.Currency, balance string) *domain.Account {
	now := time.Now().UTC()
	account := &domain.Account{
		ID:        "acct-1",
		UserID:    userID,
		Currency:  currency,
		Balance:   decimal.RequireFromString(balance),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.Seed(account)
	return account
}

func TestBalanceUseCase_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("first credit creates the account lazily", func(t *testing.T) {
		f := newBalanceFixture()

		res, err := f.uc.Credit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(100),
			Type:           domain.EntryDeposit,
			IdempotencyKey: "deposit:tx1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Replayed {
			t.Error("fresh credit must not be a replay")
		}
		if !res.Entry.PreviousBalance.IsZero() {
			t.Errorf("expected previous balance 0, got %s", res.Entry.PreviousBalance)
		}
		if !res.Entry.CurrentBalance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected current balance 100, got %s", res.Entry.CurrentBalance)
		}

		balance, err := f.uc.GetBalance(ctx, 7, domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance 100, got %s", balance)
		}
	})

	t.Run("repeated idempotency key replays the original entry", func(t *testing.T) {
		f := newBalanceFixture()

		input := usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(100),
			Type:           domain.EntryDeposit,
			IdempotencyKey: "deposit:tx1",
		}

		first, err := f.uc.Credit(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		second, err := f.uc.Credit(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !second.Replayed {
			t.Error("expected a replay")
		}
		if second.Entry.ID != first.Entry.ID {
			t.Errorf("replay returned a different entry: %s vs %s", second.Entry.ID, first.Entry.ID)
		}
		if got := len(f.entryRepo.All()); got != 1 {
			t.Errorf("expected 1 entry, got %d", got)
		}

		balance, _ := f.uc.GetBalance(ctx, 7, domain.CurrencyUNI)
		if !balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance 100 after replay, got %s", balance)
		}
	})

	t.Run("missing idempotency key is refused", func(t *testing.T) {
		f := newBalanceFixture()

		_, err := f.uc.Credit(ctx, usecase.MutationInput{
			UserID:   7,
			Currency: domain.CurrencyUNI,
			Amount:   decimal.NewFromInt(100),
			Type:     domain.EntryDeposit,
		})
		if !errors.Is(err, domain.ErrMissingIdempotency) {
			t.Fatalf("expected ErrMissingIdempotency, got %v", err)
		}
	})

	t.Run("non-positive amount is refused", func(t *testing.T) {
		f := newBalanceFixture()

		_, err := f.uc.Credit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(-5),
			Type:           domain.EntryDeposit,
			IdempotencyKey: "deposit:tx1",
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("companion write failure aborts the mutation", func(t *testing.T) {
		f := newBalanceFixture()

		companionErr := errors.New("companion unavailable")
		_, err := f.uc.Credit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(100),
			Type:           domain.EntryFarmingReward,
			IdempotencyKey: "scheduler:pos-1:1",
			InTx: func(ctx context.Context, tx usecase.Transaction) error {
				return companionErr
			},
		})
		if !errors.Is(err, companionErr) {
			t.Fatalf("expected the companion failure to surface, got %v", err)
		}
	})

	t.Run("companion write is skipped on replay", func(t *testing.T) {
		f := newBalanceFixture()

		input := usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(100),
			Type:           domain.EntryFarmingReward,
			IdempotencyKey: "scheduler:pos-1:1",
		}
		if _, err := f.uc.Credit(ctx, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		called := false
		input.InTx = func(ctx context.Context, tx usecase.Transaction) error {
			called = true
			return nil
		}
		res, err := f.uc.Credit(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Replayed {
			t.Error("expected a replay")
		}
		if called {
			t.Error("companion write ran on a replayed mutation")
		}
	})
}

func TestBalanceUseCase_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("debit reduces the balance", func(t *testing.T) {
		f := newBalanceFixture()
		seedAccount(f.accountRepo, 7, domain.CurrencyUNI, "100")

		res, err := f.uc.Debit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(40),
			Type:           domain.EntryWithdrawal,
			IdempotencyKey: "withdraw:r1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Entry.Amount.Equal(decimal.NewFromInt(-40)) {
			t.Errorf("expected signed amount -40, got %s", res.Entry.Amount)
		}
		if !res.Entry.CurrentBalance.Equal(decimal.NewFromInt(60)) {
			t.Errorf("expected current balance 60, got %s", res.Entry.CurrentBalance)
		}
	})

	t.Run("overdraft is refused and writes nothing", func(t *testing.T) {
		f := newBalanceFixture()
		seedAccount(f.accountRepo, 7, domain.CurrencyUNI, "100")

		_, err := f.uc.Debit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(150),
			Type:           domain.EntryWithdrawal,
			IdempotencyKey: "withdraw:r2",
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if got := len(f.entryRepo.All()); got != 0 {
			t.Errorf("expected no entries, got %d", got)
		}

		balance, _ := f.uc.GetBalance(ctx, 7, domain.CurrencyUNI)
		if !balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected untouched balance 100, got %s", balance)
		}
	})

	t.Run("debit against a missing account is an overdraft", func(t *testing.T) {
		f := newBalanceFixture()

		_, err := f.uc.Debit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(1),
			Type:           domain.EntryWithdrawal,
			IdempotencyKey: "withdraw:r3",
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("version conflict is retried until it lands", func(t *testing.T) {
		f := newBalanceFixture()
		seedAccount(f.accountRepo, 7, domain.CurrencyUNI, "100")

		conflicts := 0
		f.accountRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
			if conflicts < 2 {
				conflicts++
				// The failed attempt's transaction rolls back, taking the
				// idempotency reservation with it.
				f.idemRepo.Forget("withdraw:r4")
				return domain.ErrConcurrencyConflict
			}
			f.accountRepo.UpdateBalanceFunc = nil
			return f.accountRepo.UpdateBalance(ctx, tx, id, balance, expectedVersion, updatedAt)
		}

		res, err := f.uc.Debit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(10),
			Type:           domain.EntryWithdrawal,
			IdempotencyKey: "withdraw:r4",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conflicts != 2 {
			t.Errorf("expected 2 conflicts before success, got %d", conflicts)
		}
		if !res.Entry.CurrentBalance.Equal(decimal.NewFromInt(90)) {
			t.Errorf("expected current balance 90, got %s", res.Entry.CurrentBalance)
		}
	})
}

func TestBalanceUseCase_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("negative delta reduces the balance", func(t *testing.T) {
		f := newBalanceFixture()
		seedAccount(f.accountRepo, 7, domain.CurrencyTON, "50")

		res, err := f.uc.Adjust(ctx, usecase.AdjustInput{
			UserID:         7,
			Currency:       domain.CurrencyTON,
			Delta:          decimal.NewFromInt(-20),
			IdempotencyKey: "adjust:a1",
			Reason:         "support ticket 4711",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Entry.Type != domain.EntryAdjustment {
			t.Errorf("expected ADJUSTMENT entry, got %s", res.Entry.Type)
		}
		if !res.Entry.CurrentBalance.Equal(decimal.NewFromInt(30)) {
			t.Errorf("expected current balance 30, got %s", res.Entry.CurrentBalance)
		}
	})

	t.Run("zero delta is refused", func(t *testing.T) {
		f := newBalanceFixture()

		_, err := f.uc.Adjust(ctx, usecase.AdjustInput{
			UserID:         7,
			Currency:       domain.CurrencyTON,
			Delta:          decimal.Zero,
			IdempotencyKey: "adjust:a2",
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestBalanceUseCase_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("absent account reads as zero", func(t *testing.T) {
		f := newBalanceFixture()

		balance, err := f.uc.GetBalance(ctx, 99, domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !balance.IsZero() {
			t.Errorf("expected zero balance, got %s", balance)
		}
	})

	t.Run("mutation invalidates the cached balance", func(t *testing.T) {
		f := newBalanceFixture()
		seedAccount(f.accountRepo, 7, domain.CurrencyUNI, "100")

		// Warm the cache.
		if _, err := f.uc.GetBalance(ctx, 7, domain.CurrencyUNI); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.uc.Credit(ctx, usecase.MutationInput{
			UserID:         7,
			Currency:       domain.CurrencyUNI,
			Amount:         decimal.NewFromInt(25),
			Type:           domain.EntryDeposit,
			IdempotencyKey: "deposit:tx9",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		balance, err := f.uc.GetBalance(ctx, 7, domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(125)) {
			t.Errorf("expected balance 125 after invalidation, got %s", balance)
		}
	})
}
