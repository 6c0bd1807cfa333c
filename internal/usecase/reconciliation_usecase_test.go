package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
	"github.com/unifarm/ledger/internal/usecase/mocks"
)

func TestReconciliationUseCase_ReconcileAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("matching projection reconciles", func(t *testing.T) {
		ledger := &mocks.MockLedgerRepository{
			AccountEntrySumFunc: func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
				return decimal.RequireFromString("125.5"), decimal.RequireFromString("125.5"), nil
			},
		}
		uc := usecase.NewReconciliationUseCase(mocks.NewMockAccountRepository(), ledger)

		result, err := uc.ReconcileAccount(ctx, "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsReconciled {
			t.Error("expected the account to reconcile")
		}
		if !result.Difference.IsZero() {
			t.Errorf("expected zero difference, got %s", result.Difference)
		}
	})

	t.Run("a drifted projection reports the difference", func(t *testing.T) {
		ledger := &mocks.MockLedgerRepository{
			AccountEntrySumFunc: func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
				return decimal.NewFromInt(100), decimal.NewFromInt(90), nil
			},
		}
		uc := usecase.NewReconciliationUseCase(mocks.NewMockAccountRepository(), ledger)

		result, err := uc.ReconcileAccount(ctx, "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsReconciled {
			t.Error("expected a discrepancy")
		}
		if !result.Difference.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected difference 10, got %s", result.Difference)
		}
	})
}

func TestReconciliationUseCase_GenerateReport(t *testing.T) {
	ctx := context.Background()

	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", UserID: 1, Currency: domain.CurrencyUNI})
	accountRepo.Seed(&domain.Account{ID: "acc-2", UserID: 2, Currency: domain.CurrencyUNI})
	accountRepo.Seed(&domain.Account{ID: "acc-3", UserID: 3, Currency: domain.CurrencyTON})

	ledger := &mocks.MockLedgerRepository{
		AccountEntrySumFunc: func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
			if accountID == "acc-2" {
				return decimal.NewFromInt(50), decimal.NewFromInt(45), nil
			}
			return decimal.NewFromInt(50), decimal.NewFromInt(50), nil
		},
	}
	uc := usecase.NewReconciliationUseCase(accountRepo, ledger)

	report, err := uc.GenerateReport(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalAccounts != 3 {
		t.Errorf("expected 3 accounts checked, got %d", report.TotalAccounts)
	}
	if report.ReconciledAccounts != 2 {
		t.Errorf("expected 2 reconciled accounts, got %d", report.ReconciledAccounts)
	}
	if len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "acc-2" {
		t.Fatalf("expected acc-2 as the only discrepancy, got %+v", report.Discrepancies)
	}
}

func TestReconciliationUseCase_ListMismatched(t *testing.T) {
	ctx := context.Background()

	var gotLimit int
	ledger := &mocks.MockLedgerRepository{
		ListMismatchedFunc: func(ctx context.Context, limit int) ([]string, error) {
			gotLimit = limit
			return []string{"acc-9"}, nil
		},
	}
	uc := usecase.NewReconciliationUseCase(mocks.NewMockAccountRepository(), ledger)

	ids, err := uc.ListMismatched(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("expected the default limit of 100, got %d", gotLimit)
	}
	if len(ids) != 1 || ids[0] != "acc-9" {
		t.Errorf("unexpected mismatched ids %v", ids)
	}
}
