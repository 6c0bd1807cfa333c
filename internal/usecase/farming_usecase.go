package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// BalanceMutator is the slice of BalanceUseCase the farming flows need.
type BalanceMutator interface {
	Credit(ctx context.Context, input MutationInput) (*MutationResult, error)
	Debit(ctx context.Context, input MutationInput) (*MutationResult, error)
}

// Distributor is the referral fan-out entry point.
type Distributor interface {
	Distribute(ctx context.Context, userID int64, amount decimal.Decimal, currency domain.Currency, sourceRef string) (*DistributeResult, error)
}

// FarmingUseCase owns farming positions and the per-period income accrual
// the scheduler drives.
type FarmingUseCase struct {
	positionRepo PositionRepository
	balanceUC    BalanceMutator
	referralUC   Distributor
	idGen        IDGenerator
	period       time.Duration
	maxCatchUp   int64
	ratePerTick  decimal.Decimal
	logger       zerolog.Logger
}

// FarmingConfig holds accrual parameters.
type FarmingConfig struct {
	// Period is the accrual interval.
	Period time.Duration
	// MaxCatchUpPeriods bounds how many missed periods a single accrual may
	// cover; 0 means unbounded.
	MaxCatchUpPeriods int64
	// RatePerPeriod is the income rate applied to the principal each period.
	RatePerPeriod decimal.Decimal
}

// NewFarmingUseCase creates a new FarmingUseCase.
func NewFarmingUseCase(
	positionRepo PositionRepository,
	balanceUC BalanceMutator,
	referralUC Distributor,
	idGen IDGenerator,
	cfg FarmingConfig,
	logger zerolog.Logger,
) *FarmingUseCase {
	return &FarmingUseCase{
		positionRepo: positionRepo,
		balanceUC:    balanceUC,
		referralUC:   referralUC,
		idGen:        idGen,
		period:       cfg.Period,
		maxCatchUp:   cfg.MaxCatchUpPeriods,
		ratePerTick:  cfg.RatePerPeriod,
		logger:       logger,
	}
}

// OpenPositionInput represents input for opening a farming position.
type OpenPositionInput struct {
	UserID    int64
	Currency  domain.Currency
	Amount    decimal.Decimal
	RequestID string
}

// OpenPosition debits the principal from the user's balance and creates an
// active position. The debit carries the position ID as source ref, so a
// retried request recovers the same position instead of opening a second one.
func (uc *FarmingUseCase) OpenPosition(ctx context.Context, input OpenPositionInput) (*domain.FarmingPosition, error) {
	if input.RequestID == "" {
		return nil, domain.ErrMissingIdempotency
	}

	now := time.Now().UTC()
	positionID := uc.idGen.Generate()

	res, err := uc.balanceUC.Debit(ctx, MutationInput{
		UserID:         input.UserID,
		Currency:       input.Currency,
		Amount:         input.Amount,
		Type:           domain.EntryFarmingDeposit,
		IdempotencyKey: domain.FarmingDepositKey(input.RequestID),
		SourceRef:      positionID,
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		position, err := uc.positionRepo.GetByID(ctx, res.Entry.SourceRef)
		if err == nil {
			return position, nil
		}
		if !errors.Is(err, domain.ErrPositionNotFound) {
			return nil, err
		}
		// The debit committed but the position write was lost; finish the
		// original attempt under its ID.
		positionID = res.Entry.SourceRef
	}

	position := &domain.FarmingPosition{
		ID:            positionID,
		UserID:        input.UserID,
		Currency:      input.Currency,
		Principal:     input.Amount,
		RatePerPeriod: uc.ratePerTick,
		LastAccruedAt: now,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	return position, nil
}

// ClosePosition performs a final accrual, returns the principal, and
// deactivates the position.
func (uc *FarmingUseCase) ClosePosition(ctx context.Context, userID int64, positionID string) (*domain.FarmingPosition, error) {
	position, err := uc.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if position.UserID != userID {
		return nil, domain.ErrPositionNotFound
	}
	if !position.Active {
		return nil, domain.ErrPositionInactive
	}

	now := time.Now().UTC()
	if _, err := uc.ProcessPosition(ctx, position, now); err != nil {
		return nil, err
	}

	if _, err := uc.balanceUC.Credit(ctx, MutationInput{
		UserID:         position.UserID,
		Currency:       position.Currency,
		Amount:         position.Principal,
		Type:           domain.EntryFarmingReturn,
		IdempotencyKey: domain.FarmingReturnKey(position.ID),
		SourceRef:      position.ID,
	}); err != nil {
		return nil, err
	}

	if err := uc.positionRepo.Deactivate(ctx, position.ID, now); err != nil {
		return nil, err
	}

	position.Active = false
	position.UpdatedAt = now
	return position, nil
}

// ListPositions returns all positions for a user.
func (uc *FarmingUseCase) ListPositions(ctx context.Context, userID int64) ([]*domain.FarmingPosition, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return uc.positionRepo.ListByUser(ctx, userID)
}

// TickResult summarizes one scheduler pass.
type TickResult struct {
	Due      int
	Credited int
	Replayed int
	Skipped  int
	Failed   int
}

// ProcessDue accrues income for every due position. Positions are processed
// independently: one failure is counted and logged, the rest continue.
func (uc *FarmingUseCase) ProcessDue(ctx context.Context, now time.Time, batchSize int) (*TickResult, error) {
	cutoff := now.Add(-uc.period)
	positions, err := uc.positionRepo.ListDue(ctx, cutoff, batchSize)
	if err != nil {
		return nil, err
	}

	result := &TickResult{Due: len(positions)}
	for _, position := range positions {
		if ctx.Err() != nil {
			// Yield remaining positions to the next tick; partial progress
			// is safe behind the idempotency keys.
			return result, ctx.Err()
		}

		accrual, err := uc.ProcessPosition(ctx, position, now)
		if err != nil {
			result.Failed++
			uc.logger.Error().Err(err).
				Str("position_id", position.ID).
				Int64("user_id", position.UserID).
				Msg("position accrual failed")
			continue
		}

		switch {
		case accrual == nil:
			result.Skipped++
		case accrual.Replayed:
			result.Replayed++
		default:
			result.Credited++
		}
	}

	return result, nil
}

// AccrualResult describes one position accrual.
type AccrualResult struct {
	Entry    *domain.Entry
	Income   decimal.Decimal
	Periods  int64
	Replayed bool
}

// ProcessPosition accrues a single position up to now: credit the income
// under the scheduler key and advance last_accrued_at in the same
// transaction, then cascade referral commissions. The window advance must
// ride the credit's transaction: if it committed separately, a crash in
// between would leave last_accrued_at behind, and the next tick would cover
// extra elapsed periods under a fresh key, re-crediting income the stale
// window already paid out.
func (uc *FarmingUseCase) ProcessPosition(ctx context.Context, position *domain.FarmingPosition, now time.Time) (*AccrualResult, error) {
	if !position.Active {
		return nil, domain.ErrPositionInactive
	}

	periods := position.PeriodsElapsed(now, uc.period, uc.maxCatchUp)
	if periods == 0 {
		return nil, nil
	}

	income := position.AccruedIncome(periods)
	periodEnd := position.PeriodEnd(uc.period, periods)

	if !income.IsPositive() {
		// Zero-rate position: just advance the window.
		if err := uc.positionRepo.AdvanceAccrual(ctx, nil, position.ID, periodEnd, now); err != nil {
			return nil, err
		}
		position.LastAccruedAt = periodEnd
		return nil, nil
	}

	res, err := uc.balanceUC.Credit(ctx, MutationInput{
		UserID:         position.UserID,
		Currency:       position.Currency,
		Amount:         income,
		Type:           domain.EntryFarmingReward,
		IdempotencyKey: domain.SchedulerKey(position.ID, periodEnd),
		SourceRef:      position.ID,
		InTx: func(ctx context.Context, tx Transaction) error {
			return uc.positionRepo.AdvanceAccrual(ctx, tx, position.ID, periodEnd, now)
		},
	})
	if err != nil {
		return nil, err
	}
	position.LastAccruedAt = periodEnd

	// Fan out even on replay: a prior run may have crashed between credit
	// and distribution, and the referral keys absorb the overlap.
	if uc.referralUC != nil {
		if _, err := uc.referralUC.Distribute(ctx, position.UserID, income, position.Currency, res.Entry.ID); err != nil {
			uc.logger.Error().Err(err).
				Str("position_id", position.ID).
				Str("entry_id", res.Entry.ID).
				Msg("referral fan-out failed")
		}
	}

	return &AccrualResult{
		Entry:    res.Entry,
		Income:   income,
		Periods:  periods,
		Replayed: res.Replayed,
	}, nil
}
