package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unifarm/ledger/internal/adapter/catalog"
	httpAdapter "github.com/unifarm/ledger/internal/adapter/http"
	"github.com/unifarm/ledger/internal/adapter/http/handler"
	"github.com/unifarm/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/unifarm/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/unifarm/ledger/internal/adapter/repository/redis"
	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/infrastructure/config"
	"github.com/unifarm/ledger/internal/infrastructure/logger"
	"github.com/unifarm/ledger/internal/infrastructure/metrics"
	"github.com/unifarm/ledger/internal/infrastructure/postgres"
	"github.com/unifarm/ledger/internal/infrastructure/redis"
	"github.com/unifarm/ledger/internal/scheduler"
	"github.com/unifarm/ledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	idempotencyRepo := postgresRepo.NewIdempotencyRepository(pool)
	positionRepo := postgresRepo.NewPositionRepository(pool)
	referralRepo := postgresRepo.NewReferralRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	balanceCache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	schedulerLock := redisRepo.NewSchedulerLock(redisClient, cfg.SchedulerLockKey, cfg.SchedulerLockLease)

	// Referral commission configuration
	baseFraction, levelRates, err := cfg.ReferralRates()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid referral configuration")
	}
	commissionTable := domain.DefaultCommissionTable()
	commissionTable.BaseFraction = baseFraction
	if levelRates != nil {
		commissionTable.LevelRates = levelRates
	}

	farmingRate, err := cfg.FarmingRate()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid farming configuration")
	}

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(
		txManager, accountRepo, entryRepo, idempotencyRepo,
		idGen, retrier, balanceCache, cfg.BalanceCacheTTL,
	)
	referralUC := usecase.NewReferralUseCase(referralRepo, balanceUC, commissionTable, appLogger)
	farmingUC := usecase.NewFarmingUseCase(positionRepo, balanceUC, referralUC, idGen, usecase.FarmingConfig{
		Period:            cfg.SchedulerInterval,
		MaxCatchUpPeriods: cfg.FarmingMaxCatchUp,
		RatePerPeriod:     farmingRate,
	}, appLogger)
	entryUC := usecase.NewEntryUseCase(entryRepo, accountRepo)
	depositUC := usecase.NewDepositUseCase(balanceUC)
	boostUC := usecase.NewBoostUseCase(balanceUC, catalog.NewStaticBoostCatalog())
	rewardUC := usecase.NewRewardUseCase(balanceUC, referralUC, appLogger)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, ledgerRepo)

	// Per-IP rate limiting on the HTTP edge
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	rateLimiter.OnLimit = func(ip string) {
		appMetrics.RateLimitHits.WithLabelValues(ip).Inc()
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			rateLimiter.CleanupLimiters()
		}
	}()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC, entryUC),
		WalletHandler:    handler.NewWalletHandler(depositUC),
		FarmingHandler:   handler.NewFarmingHandler(farmingUC),
		ReferralHandler:  handler.NewReferralHandler(referralUC),
		BoostHandler:     handler.NewBoostHandler(boostUC),
		RewardHandler:    handler.NewRewardHandler(rewardUC),
		AdminHandler:     handler.NewAdminHandler(balanceUC, reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          appMetrics,
		Logger:           appLogger,
	})

	// Reward scheduler
	rewardScheduler := scheduler.New(scheduler.Config{
		Accruer:   farmingUC,
		Lock:      schedulerLock,
		Metrics:   appMetrics,
		LockLease: cfg.SchedulerLockLease,
		Interval:  cfg.SchedulerInterval,
		BatchSize: cfg.SchedulerBatchSize,
	})

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		rewardScheduler.Start(schedulerCtx)
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	stopScheduler()
	<-schedulerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
