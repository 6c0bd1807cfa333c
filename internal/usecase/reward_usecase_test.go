package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

func TestRewardUseCase_GrantMissionReward(t *testing.T) {
	ctx := context.Background()

	t.Run("credits once per mission and user", func(t *testing.T) {
		balance := newCreditRecorder()
		fanOut := &fanOutRecorder{}
		uc := usecase.NewRewardUseCase(balance, fanOut, zerolog.Nop())

		first, err := uc.GrantMissionReward(ctx, 7, "mission-42", decimal.NewFromInt(500), domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Replayed {
			t.Error("first grant must not be a replay")
		}
		if got := balance.credits[0].IdempotencyKey; got != domain.MissionKey("mission-42", 7) {
			t.Errorf("unexpected idempotency key %q", got)
		}

		second, err := uc.GrantMissionReward(ctx, 7, "mission-42", decimal.NewFromInt(500), domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !second.Replayed {
			t.Error("expected the second grant to replay")
		}
		if len(balance.credits) != 1 {
			t.Errorf("expected 1 credit, got %d", len(balance.credits))
		}

		// The same mission for another user is a distinct grant.
		if _, err := uc.GrantMissionReward(ctx, 8, "mission-42", decimal.NewFromInt(500), domain.CurrencyUNI); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(balance.credits) != 2 {
			t.Errorf("expected 2 credits, got %d", len(balance.credits))
		}
	})

	t.Run("fans out referral commissions from the reward entry", func(t *testing.T) {
		balance := newCreditRecorder()
		fanOut := &fanOutRecorder{}
		uc := usecase.NewRewardUseCase(balance, fanOut, zerolog.Nop())

		res, err := uc.GrantMissionReward(ctx, 7, "mission-42", decimal.NewFromInt(500), domain.CurrencyUNI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fanOut.calls) != 1 || fanOut.calls[0] != res.Entry.ID {
			t.Errorf("expected fan-out from entry %s, got %v", res.Entry.ID, fanOut.calls)
		}
	})

	t.Run("missing mission ID is refused", func(t *testing.T) {
		uc := usecase.NewRewardUseCase(newCreditRecorder(), nil, zerolog.Nop())

		_, err := uc.GrantMissionReward(ctx, 7, "", decimal.NewFromInt(500), domain.CurrencyUNI)
		if !errors.Is(err, domain.ErrMissingIdempotency) {
			t.Fatalf("expected ErrMissingIdempotency, got %v", err)
		}
	})
}

func TestRewardUseCase_GrantDailyBonus(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)

	t.Run("one claim per UTC day", func(t *testing.T) {
		balance := newCreditRecorder()
		uc := usecase.NewRewardUseCase(balance, nil, zerolog.Nop())

		first, err := uc.GrantDailyBonus(ctx, 7, decimal.NewFromInt(5), domain.CurrencyUNI, day)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Replayed {
			t.Error("first claim must not be a replay")
		}

		// Half a minute later, same UTC date.
		second, err := uc.GrantDailyBonus(ctx, 7, decimal.NewFromInt(5), domain.CurrencyUNI, day.Add(30*time.Second))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !second.Replayed {
			t.Error("expected the same-day claim to replay")
		}

		// Two minutes later it is the next UTC day.
		third, err := uc.GrantDailyBonus(ctx, 7, decimal.NewFromInt(5), domain.CurrencyUNI, day.Add(2*time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if third.Replayed {
			t.Error("expected the next-day claim to credit")
		}
		if len(balance.credits) != 2 {
			t.Errorf("expected 2 credits, got %d", len(balance.credits))
		}
	})
}
