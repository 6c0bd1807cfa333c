package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

func TestDepositUseCase_ProcessTONDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("credits TON keyed by transaction hash", func(t *testing.T) {
		balance := newCreditRecorder()
		uc := usecase.NewDepositUseCase(balance)

		res, err := uc.ProcessTONDeposit(ctx, 7, decimal.RequireFromString("12.5"), "txhash1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Replayed {
			t.Error("first deposit must not be a replay")
		}

		credit := balance.credits[0]
		if credit.Currency != domain.CurrencyTON {
			t.Errorf("expected TON, got %s", credit.Currency)
		}
		if credit.IdempotencyKey != domain.DepositKey("txhash1") {
			t.Errorf("unexpected idempotency key %q", credit.IdempotencyKey)
		}
	})

	t.Run("a redelivered confirmation replays", func(t *testing.T) {
		balance := newCreditRecorder()
		uc := usecase.NewDepositUseCase(balance)

		first, err := uc.ProcessTONDeposit(ctx, 7, decimal.RequireFromString("12.5"), "txhash1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		second, err := uc.ProcessTONDeposit(ctx, 7, decimal.RequireFromString("12.5"), "txhash1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !second.Replayed || second.Entry.ID != first.Entry.ID {
			t.Errorf("expected a replay of entry %s, got %+v", first.Entry.ID, second)
		}
		if len(balance.credits) != 1 {
			t.Errorf("expected a single credit, got %d", len(balance.credits))
		}
	})

	t.Run("missing transaction hash is refused", func(t *testing.T) {
		uc := usecase.NewDepositUseCase(newCreditRecorder())

		_, err := uc.ProcessTONDeposit(ctx, 7, decimal.NewFromInt(1), "")
		if !errors.Is(err, domain.ErrMissingIdempotency) {
			t.Fatalf("expected ErrMissingIdempotency, got %v", err)
		}
	})
}

func TestDepositUseCase_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("debits keyed by request ID", func(t *testing.T) {
		balance := newCreditRecorder()
		uc := usecase.NewDepositUseCase(balance)

		if _, err := uc.Withdraw(ctx, 7, domain.CurrencyUNI, decimal.NewFromInt(40), "req-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		debit := balance.debits[0]
		if debit.IdempotencyKey != domain.WithdrawKey("req-1") {
			t.Errorf("unexpected idempotency key %q", debit.IdempotencyKey)
		}
		if debit.Type != domain.EntryWithdrawal {
			t.Errorf("unexpected entry type %s", debit.Type)
		}
	})

	t.Run("insufficient balance surfaces unchanged", func(t *testing.T) {
		balance := newCreditRecorder()
		balance.failKeys = map[string]error{
			domain.WithdrawKey("req-1"): domain.ErrInsufficientBalance,
		}
		uc := usecase.NewDepositUseCase(balance)

		_, err := uc.Withdraw(ctx, 7, domain.CurrencyUNI, decimal.NewFromInt(40), "req-1")
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("missing request ID is refused", func(t *testing.T) {
		uc := usecase.NewDepositUseCase(newCreditRecorder())

		_, err := uc.Withdraw(ctx, 7, domain.CurrencyUNI, decimal.NewFromInt(40), "")
		if !errors.Is(err, domain.ErrMissingIdempotency) {
			t.Fatalf("expected ErrMissingIdempotency, got %v", err)
		}
	})
}
