package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/unifarm/ledger/internal/adapter/http/handler"
	"github.com/unifarm/ledger/internal/adapter/http/middleware"
	"github.com/unifarm/ledger/internal/infrastructure/metrics"
	"github.com/unifarm/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	WalletHandler    *handler.WalletHandler
	FarmingHandler   *handler.FarmingHandler
	ReferralHandler  *handler.ReferralHandler
	BoostHandler     *handler.BoostHandler
	RewardHandler    *handler.RewardHandler
	AdminHandler     *handler.AdminHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
}

// NewRouter creates the HTTP router.
//
// User-facing routes sit behind the identity middleware and read the user
// from the trusted header set by the auth gateway. The /internal and /admin
// trees are service-to-service surfaces reachable only inside the network
// perimeter.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// User-facing API, behind the auth gateway
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Get("/balance", cfg.BalanceHandler.GetBalance)
		r.Get("/balances", cfg.BalanceHandler.ListBalances)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.ListEntries)
			r.Get("/{id}", cfg.BalanceHandler.GetEntry)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/deposits/ton", cfg.WalletHandler.Deposit)
			r.Post("/withdrawals", cfg.WalletHandler.Withdraw)
		})

		r.Route("/farming", func(r chi.Router) {
			r.Post("/positions", cfg.FarmingHandler.Open)
			r.Get("/positions", cfg.FarmingHandler.List)
			r.Post("/positions/{id}/close", cfg.FarmingHandler.Close)
		})

		r.Route("/referrals", func(r chi.Router) {
			r.Post("/", cfg.ReferralHandler.Register)
			r.Get("/upline", cfg.ReferralHandler.Upline)
		})

		r.Post("/boosts/purchase", cfg.BoostHandler.Purchase)
	})

	// Called by the missions and bonus services
	r.Route("/internal/v1/rewards", func(r chi.Router) {
		r.Post("/mission", cfg.RewardHandler.Mission)
		r.Post("/daily-bonus", cfg.RewardHandler.DailyBonus)
	})

	// Operational tooling
	r.Route("/admin/v1", func(r chi.Router) {
		r.Post("/adjustments", cfg.AdminHandler.Adjust)
		r.Get("/reconciliation", cfg.AdminHandler.ReconciliationReport)
		r.Get("/reconciliation/mismatched", cfg.AdminHandler.Mismatched)
		r.Get("/reconciliation/accounts/{id}", cfg.AdminHandler.ReconcileAccount)
	})

	return r
}
