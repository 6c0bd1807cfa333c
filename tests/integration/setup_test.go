package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/adapter/catalog"
	adaptershttp "github.com/unifarm/ledger/internal/adapter/http"
	"github.com/unifarm/ledger/internal/adapter/http/handler"
	"github.com/unifarm/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/unifarm/ledger/internal/adapter/repository/redis"
	"github.com/unifarm/ledger/internal/domain"
	infraredis "github.com/unifarm/ledger/internal/infrastructure/redis"
	"github.com/unifarm/ledger/internal/usecase"
	"github.com/unifarm/ledger/tests/testutil"
)

// testEnv wires the full stack against real Postgres and Redis.
type testEnv struct {
	Router    http.Handler
	BalanceUC *usecase.BalanceUseCase
	FarmingUC *usecase.FarmingUseCase
	Referral  *usecase.ReferralUseCase
	DB        *testutil.TestDB
}

func newTestEnv(t *testing.T, ctx context.Context) *testEnv {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(pool)
	positionRepo := postgres.NewPositionRepository(pool)
	referralRepo := postgres.NewReferralRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	balanceCache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	logger := zerolog.Nop()

	balanceUC := usecase.NewBalanceUseCase(
		txManager, accountRepo, entryRepo, idempotencyRepo,
		idGen, retrier, balanceCache, 30*time.Second,
	)
	referralUC := usecase.NewReferralUseCase(referralRepo, balanceUC, domain.DefaultCommissionTable(), logger)
	farmingUC := usecase.NewFarmingUseCase(positionRepo, balanceUC, referralUC, idGen, usecase.FarmingConfig{
		Period:            5 * time.Minute,
		MaxCatchUpPeriods: 288,
		RatePerPeriod:     decimal.RequireFromString("0.0000347222"),
	}, logger)
	entryUC := usecase.NewEntryUseCase(entryRepo, accountRepo)
	depositUC := usecase.NewDepositUseCase(balanceUC)
	boostUC := usecase.NewBoostUseCase(balanceUC, catalog.NewStaticBoostCatalog())
	rewardUC := usecase.NewRewardUseCase(balanceUC, referralUC, logger)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, ledgerRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC, entryUC),
		WalletHandler:    handler.NewWalletHandler(depositUC),
		FarmingHandler:   handler.NewFarmingHandler(farmingUC),
		ReferralHandler:  handler.NewReferralHandler(referralUC),
		BoostHandler:     handler.NewBoostHandler(boostUC),
		RewardHandler:    handler.NewRewardHandler(rewardUC),
		AdminHandler:     handler.NewAdminHandler(balanceUC, reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		Logger:           logger,
	})

	return &testEnv{
		Router:    router,
		BalanceUC: balanceUC,
		FarmingUC: farmingUC,
		Referral:  referralUC,
		DB:        testDB,
	}
}

// mutation builds a MutationInput with a literal decimal amount.
func mutation(userID int64, currency, amount string, entryType domain.EntryType, key string) usecase.MutationInput {
	return usecase.MutationInput{
		UserID:         userID,
		Currency:       domain.Currency(currency),
		Amount:         decimal.RequireFromString(amount),
		Type:           entryType,
		IdempotencyKey: key,
	}
}
