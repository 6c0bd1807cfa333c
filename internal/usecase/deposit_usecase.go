package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// DepositUseCase handles on-chain deposit ingestion and withdrawals. The
// on-chain verifier is an external collaborator; by the time money reaches
// this use case the (user, amount, tx_hash) tuple is already verified.
type DepositUseCase struct {
	balanceUC BalanceMutator
}

// NewDepositUseCase creates a new DepositUseCase.
func NewDepositUseCase(balanceUC BalanceMutator) *DepositUseCase {
	return &DepositUseCase{balanceUC: balanceUC}
}

// ProcessTONDeposit credits a verified on-chain deposit. The transaction
// hash is the idempotency key: a redelivered webhook replays the prior entry
// instead of crediting twice.
func (uc *DepositUseCase) ProcessTONDeposit(ctx context.Context, userID int64, amount decimal.Decimal, txHash string) (*MutationResult, error) {
	if txHash == "" {
		return nil, domain.ErrMissingIdempotency
	}
	return uc.balanceUC.Credit(ctx, MutationInput{
		UserID:         userID,
		Currency:       domain.CurrencyTON,
		Amount:         amount,
		Type:           domain.EntryDeposit,
		IdempotencyKey: domain.DepositKey(txHash),
		SourceRef:      txHash,
	})
}

// Withdraw debits a withdrawal request. Insufficient balance surfaces
// synchronously; the triggering request is refused, never partially applied.
func (uc *DepositUseCase) Withdraw(ctx context.Context, userID int64, currency domain.Currency, amount decimal.Decimal, requestID string) (*MutationResult, error) {
	if requestID == "" {
		return nil, domain.ErrMissingIdempotency
	}
	return uc.balanceUC.Debit(ctx, MutationInput{
		UserID:         userID,
		Currency:       currency,
		Amount:         amount,
		Type:           domain.EntryWithdrawal,
		IdempotencyKey: domain.WithdrawKey(requestID),
		SourceRef:      requestID,
	})
}
