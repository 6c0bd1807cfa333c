package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// RewardUseCase handles non-farming reward events (missions, daily bonus).
// Every reward credits through the balance manager and cascades referral
// commissions with the reward entry as source ref.
type RewardUseCase struct {
	balanceUC  BalanceMutator
	referralUC Distributor
	logger     zerolog.Logger
}

// NewRewardUseCase creates a new RewardUseCase.
func NewRewardUseCase(balanceUC BalanceMutator, referralUC Distributor, logger zerolog.Logger) *RewardUseCase {
	return &RewardUseCase{
		balanceUC:  balanceUC,
		referralUC: referralUC,
		logger:     logger,
	}
}

// GrantMissionReward credits a one-time mission completion reward.
func (uc *RewardUseCase) GrantMissionReward(ctx context.Context, userID int64, missionID string, amount decimal.Decimal, currency domain.Currency) (*MutationResult, error) {
	if missionID == "" {
		return nil, domain.ErrMissingIdempotency
	}
	return uc.grant(ctx, MutationInput{
		UserID:         userID,
		Currency:       currency,
		Amount:         amount,
		Type:           domain.EntryMissionReward,
		IdempotencyKey: domain.MissionKey(missionID, userID),
		SourceRef:      missionID,
	})
}

// GrantDailyBonus credits the calendar-day bonus. The key is derived from
// the UTC date, so one claim per day regardless of retries.
func (uc *RewardUseCase) GrantDailyBonus(ctx context.Context, userID int64, amount decimal.Decimal, currency domain.Currency, day time.Time) (*MutationResult, error) {
	return uc.grant(ctx, MutationInput{
		UserID:         userID,
		Currency:       currency,
		Amount:         amount,
		Type:           domain.EntryDailyBonus,
		IdempotencyKey: domain.DailyBonusKey(userID, day),
		SourceRef:      domain.DailyBonusKey(userID, day),
	})
}

func (uc *RewardUseCase) grant(ctx context.Context, input MutationInput) (*MutationResult, error) {
	res, err := uc.balanceUC.Credit(ctx, input)
	if err != nil {
		return nil, err
	}

	if uc.referralUC != nil {
		if _, err := uc.referralUC.Distribute(ctx, input.UserID, input.Amount, input.Currency, res.Entry.ID); err != nil {
			uc.logger.Error().Err(err).
				Str("entry_id", res.Entry.ID).
				Int64("user_id", input.UserID).
				Msg("referral fan-out failed for reward")
		}
	}

	return res, nil
}
