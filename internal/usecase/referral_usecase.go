package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// ReferralUseCase owns the upline graph and the commission fan-out.
type ReferralUseCase struct {
	referralRepo ReferralRepository
	balanceUC    BalanceService
	table        domain.CommissionTable
	logger       zerolog.Logger
}

// BalanceService is the slice of BalanceUseCase the fan-out engine needs.
type BalanceService interface {
	Credit(ctx context.Context, input MutationInput) (*MutationResult, error)
}

// NewReferralUseCase creates a new ReferralUseCase.
func NewReferralUseCase(
	referralRepo ReferralRepository,
	balanceUC BalanceService,
	table domain.CommissionTable,
	logger zerolog.Logger,
) *ReferralUseCase {
	return &ReferralUseCase{
		referralRepo: referralRepo,
		balanceUC:    balanceUC,
		table:        table,
		logger:       logger,
	}
}

// RegisterReferral materializes the full upline chain for a new user: a
// level-1 edge to the referrer plus shifted copies of the referrer's own
// edges up to the level cap. Edges are immutable after this point.
func (uc *ReferralUseCase) RegisterReferral(ctx context.Context, userID, referrerID int64) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}
	if err := domain.ValidateUserID(referrerID); err != nil {
		return err
	}
	if userID == referrerID {
		return domain.ErrSelfReferral
	}

	referred, err := uc.referralRepo.HasReferrer(ctx, userID)
	if err != nil {
		return err
	}
	if referred {
		return domain.ErrAlreadyReferred
	}

	now := time.Now().UTC()
	edges := []*domain.ReferralEdge{{
		UserID:       userID,
		UplineUserID: referrerID,
		Level:        1,
		CreatedAt:    now,
	}}

	upline, err := uc.referralRepo.GetUpline(ctx, referrerID)
	if err != nil {
		return err
	}
	for _, edge := range upline {
		level := edge.Level + 1
		if level > domain.MaxReferralLevels {
			break
		}
		if edge.UplineUserID == userID {
			// Registering would close a loop in the graph; refuse rather
			// than corrupt every future fan-out.
			return domain.ErrReferralCycle
		}
		edges = append(edges, &domain.ReferralEdge{
			UserID:       userID,
			UplineUserID: edge.UplineUserID,
			Level:        level,
			CreatedAt:    now,
		})
	}

	return uc.referralRepo.CreateEdges(ctx, edges)
}

// GetUpline returns the materialized chain for a user.
func (uc *ReferralUseCase) GetUpline(ctx context.Context, userID int64) ([]*domain.ReferralEdge, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return uc.referralRepo.GetUpline(ctx, userID)
}

// DistributeResult summarizes one fan-out run.
type DistributeResult struct {
	Credited int
	Replayed int
	Failed   int
	Total    decimal.Decimal
}

// Distribute walks the upline of userID and credits each ancestor its
// level-dependent commission on amount. Each level is independent: a failed
// credit is logged and the walk continues. The idempotency key ties every
// commission to (sourceRef, upline, level), so re-running the whole
// distribution is a no-op.
func (uc *ReferralUseCase) Distribute(ctx context.Context, userID int64, amount decimal.Decimal, currency domain.Currency, sourceRef string) (*DistributeResult, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if sourceRef == "" {
		return nil, domain.ErrMissingIdempotency
	}

	upline, err := uc.referralRepo.GetUpline(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &DistributeResult{Total: decimal.Zero}
	visited := map[int64]bool{userID: true}

	for _, edge := range upline {
		if edge.Level > uc.table.Levels() {
			break
		}
		if visited[edge.UplineUserID] {
			// Corrupted graph pointing back downstream. Truncate the walk,
			// keep the original reward untouched.
			uc.logger.Error().
				Int64("user_id", userID).
				Int64("upline_user_id", edge.UplineUserID).
				Int("level", edge.Level).
				Str("source_ref", sourceRef).
				Msg("referral cycle detected, truncating fan-out")
			return result, domain.ErrReferralCycle
		}
		visited[edge.UplineUserID] = true

		commission := uc.table.CommissionFor(amount, edge.Level)
		if !commission.IsPositive() {
			continue
		}

		res, err := uc.balanceUC.Credit(ctx, MutationInput{
			UserID:         edge.UplineUserID,
			Currency:       currency,
			Amount:         commission,
			Type:           domain.EntryReferralReward,
			IdempotencyKey: domain.ReferralKey(sourceRef, edge.UplineUserID, edge.Level),
			SourceRef:      sourceRef,
		})
		if err != nil {
			result.Failed++
			uc.logger.Error().Err(err).
				Int64("upline_user_id", edge.UplineUserID).
				Int("level", edge.Level).
				Str("source_ref", sourceRef).
				Msg("referral commission credit failed")
			continue
		}

		if res.Replayed {
			result.Replayed++
			continue
		}

		result.Credited++
		result.Total = result.Total.Add(commission)
	}

	return result, nil
}

// String implements fmt.Stringer for log output.
func (r *DistributeResult) String() string {
	return fmt.Sprintf("credited=%d replayed=%d failed=%d total=%s",
		r.Credited, r.Replayed, r.Failed, r.Total)
}
