package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationUseCase verifies the core ledger invariant: every account's
// balance equals the sum of its entries.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(accountRepo AccountRepository, ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ReconciliationResult represents one account's check.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	CheckedAt         time.Time
}

// ReconcileAccount compares the stored projection against the entry sum in
// one snapshot.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	balance, entrySum, err := uc.ledgerRepo.AccountEntrySum(ctx, accountID)
	if err != nil {
		return nil, err
	}

	diff := balance.Sub(entrySum)
	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   balance,
		CalculatedBalance: entrySum,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		CheckedAt:         time.Now().UTC(),
	}, nil
}

// ReconciliationReport represents a fleet-wide reconciliation pass.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReport reconciles every account. Mismatches come back as
// discrepancies; fixing them is an explicit ADJUSTMENT through the balance
// manager, never part of the check.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*ReconciliationReport, error) {
	const pageSize = 1000

	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("reconciling account %s: %w", account.ID, err)
			}

			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < pageSize {
			break
		}
	}

	return report, nil
}

// ListMismatched returns IDs of accounts that fail the invariant, computed
// server-side for large fleets.
func (uc *ReconciliationUseCase) ListMismatched(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	return uc.ledgerRepo.ListMismatched(ctx, limit)
}
