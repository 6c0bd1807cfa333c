package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/adapter/catalog"
	"github.com/unifarm/ledger/internal/adapter/http/handler"
	apimiddleware "github.com/unifarm/ledger/internal/adapter/http/middleware"
	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
	"github.com/unifarm/ledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_IdentityRequiredOnAPI(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance?currency=UNI", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/balance?currency=UNI", nil)
	req.Header.Set("X-User-Id", "7")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity header, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"currency":"TON","amount":"1.5","tx_hash":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposits/ton", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "7")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/balance",
		"GET /api/v1/balances",
		"GET /api/v1/entries/",
		"GET /api/v1/entries/{id}",
		"POST /api/v1/wallet/deposits/ton",
		"POST /api/v1/wallet/withdrawals",
		"POST /api/v1/farming/positions",
		"POST /api/v1/farming/positions/{id}/close",
		"POST /api/v1/referrals/",
		"GET /api/v1/referrals/upline",
		"POST /api/v1/boosts/purchase",
		"POST /internal/v1/rewards/mission",
		"POST /internal/v1/rewards/daily-bonus",
		"POST /admin/v1/adjustments",
		"GET /admin/v1/reconciliation",
		"GET /admin/v1/reconciliation/mismatched",
		"GET /admin/v1/reconciliation/accounts/{id}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	positionRepo := mocks.NewMockPositionRepository()
	referralRepo := mocks.NewMockReferralRepository()

	balanceUC := usecase.NewBalanceUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		mocks.NewMockIdempotencyRepository(),
		&mocks.MockIDGenerator{},
		&mocks.MockRetrier{},
		mocks.NewMockCache(),
		time.Minute,
	)
	referralUC := usecase.NewReferralUseCase(referralRepo, balanceUC, domain.DefaultCommissionTable(), zerolog.Nop())
	farmingUC := usecase.NewFarmingUseCase(positionRepo, balanceUC, referralUC, &mocks.MockIDGenerator{}, usecase.FarmingConfig{
		Period:        5 * time.Minute,
		RatePerPeriod: decimal.RequireFromString("0.0000347222"),
	}, zerolog.Nop())
	entryUC := usecase.NewEntryUseCase(entryRepo, accountRepo)
	depositUC := usecase.NewDepositUseCase(balanceUC)
	boostUC := usecase.NewBoostUseCase(balanceUC, catalog.NewStaticBoostCatalog())
	rewardUC := usecase.NewRewardUseCase(balanceUC, referralUC, zerolog.Nop())
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, &mocks.MockLedgerRepository{})

	cfg := RouterConfig{
		BalanceHandler:  handler.NewBalanceHandler(balanceUC, entryUC),
		WalletHandler:   handler.NewWalletHandler(depositUC),
		FarmingHandler:  handler.NewFarmingHandler(farmingUC),
		ReferralHandler: handler.NewReferralHandler(referralUC),
		BoostHandler:    handler.NewBoostHandler(boostUC),
		RewardHandler:   handler.NewRewardHandler(rewardUC),
		AdminHandler:    handler.NewAdminHandler(balanceUC, reconciliationUC),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
