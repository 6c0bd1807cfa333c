package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository. Per-method Func
// fields override the default behavior.
type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account

	GetByUserFunc     func(ctx context.Context, userID int64, currency domain.Currency) (*domain.Account, error)
	GetForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, userID int64, currency domain.Currency) (*domain.Account, error)
	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	ListByUserFunc    func(ctx context.Context, userID int64) ([]*domain.Account, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// Seed inserts an account directly, bypassing the lazy-create path.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
}

func (m *MockAccountRepository) find(userID int64, currency domain.Currency) *domain.Account {
	for _, a := range m.accounts {
		if a.UserID == userID && a.Currency == currency {
			return a
		}
	}
	return nil
}

func (m *MockAccountRepository) GetByUser(ctx context.Context, userID int64, currency domain.Currency) (*domain.Account, error) {
	if m.GetByUserFunc != nil {
		return m.GetByUserFunc(ctx, userID, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.find(userID, currency); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, userID int64, currency domain.Currency) (*domain.Account, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, userID, currency)
	}
	return m.GetByUser(ctx, userID, currency)
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(account.UserID, account.Currency) != nil {
		return domain.ErrConcurrencyConflict
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	a.Balance = balance
	a.Version++
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*domain.Account
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		cp := *m.accounts[ids[i]]
		out = append(out, &cp)
	}
	return out, nil
}

// MockEntryRepository is an in-memory EntryRepository.
type MockEntryRepository struct {
	mu      sync.Mutex
	entries map[string]*domain.Entry
	order   []string

	CreateFunc func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{entries: make(map[string]*domain.Entry)}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.ID] = &cp
	m.order = append(m.order, entry.ID)
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for i := len(m.order) - 1; i >= 0; i-- {
		e := m.entries[m.order[i]]
		if e.AccountID != accountID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID == accountID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// All returns every stored entry, insertion-ordered.
func (m *MockEntryRepository) All() []*domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Entry, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.entries[id]
		out = append(out, &cp)
	}
	return out
}

// MockIdempotencyRepository is an in-memory dedup guard. Reserve is atomic
// under the mutex, matching the unique-index semantics of the real store.
type MockIdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord

	ReserveFunc func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error)
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{records: make(map[string]*domain.IdempotencyRecord)}
}

func (m *MockIdempotencyRepository) Reserve(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[record.Key]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *record
	m.records[record.Key] = &cp
	return nil, nil
}

func (m *MockIdempotencyRepository) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[key]; ok {
		cp := *existing
		return &cp, nil
	}
	return nil, domain.ErrEntryNotFound
}

// Forget drops a key, simulating a rolled-back reservation.
func (m *MockIdempotencyRepository) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
}

// MockPositionRepository is an in-memory PositionRepository.
type MockPositionRepository struct {
	mu        sync.Mutex
	positions map[string]*domain.FarmingPosition

	ListDueFunc        func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.FarmingPosition, error)
	AdvanceAccrualFunc func(ctx context.Context, tx usecase.Transaction, id string, lastAccruedAt, updatedAt time.Time) error
}

func NewMockPositionRepository() *MockPositionRepository {
	return &MockPositionRepository{positions: make(map[string]*domain.FarmingPosition)}
}

func (m *MockPositionRepository) Create(ctx context.Context, position *domain.FarmingPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *position
	m.positions[position.ID] = &cp
	return nil
}

func (m *MockPositionRepository) GetByID(ctx context.Context, id string) (*domain.FarmingPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.positions[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrPositionNotFound
}

func (m *MockPositionRepository) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]*domain.FarmingPosition, error) {
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, cutoff, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.FarmingPosition
	for _, p := range m.positions {
		if p.Active && !p.LastAccruedAt.After(cutoff) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAccruedAt.Before(out[j].LastAccruedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPositionRepository) AdvanceAccrual(ctx context.Context, tx usecase.Transaction, id string, lastAccruedAt, updatedAt time.Time) error {
	if m.AdvanceAccrualFunc != nil {
		return m.AdvanceAccrualFunc(ctx, tx, id, lastAccruedAt, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return domain.ErrPositionNotFound
	}
	p.LastAccruedAt = lastAccruedAt
	p.UpdatedAt = updatedAt
	return nil
}

func (m *MockPositionRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return domain.ErrPositionNotFound
	}
	p.Active = false
	p.UpdatedAt = updatedAt
	return nil
}

func (m *MockPositionRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.FarmingPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.FarmingPosition
	for _, p := range m.positions {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockReferralRepository is an in-memory ReferralRepository.
type MockReferralRepository struct {
	mu    sync.Mutex
	edges map[int64][]*domain.ReferralEdge

	GetUplineFunc func(ctx context.Context, userID int64) ([]*domain.ReferralEdge, error)
}

func NewMockReferralRepository() *MockReferralRepository {
	return &MockReferralRepository{edges: make(map[int64][]*domain.ReferralEdge)}
}

func (m *MockReferralRepository) CreateEdges(ctx context.Context, edges []*domain.ReferralEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range edges {
		cp := *e
		m.edges[e.UserID] = append(m.edges[e.UserID], &cp)
	}
	return nil
}

func (m *MockReferralRepository) GetUpline(ctx context.Context, userID int64) ([]*domain.ReferralEdge, error) {
	if m.GetUplineFunc != nil {
		return m.GetUplineFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ReferralEdge, 0, len(m.edges[userID]))
	for _, e := range m.edges[userID] {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (m *MockReferralRepository) HasReferrer(ctx context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edges[userID]) > 0, nil
}

// MockLedgerRepository backs reconciliation tests.
type MockLedgerRepository struct {
	AccountEntrySumFunc func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error)
	ListMismatchedFunc  func(ctx context.Context, limit int) ([]string, error)
}

func (m *MockLedgerRepository) AccountEntrySum(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.AccountEntrySumFunc != nil {
		return m.AccountEntrySumFunc(ctx, accountID)
	}
	return decimal.Zero, decimal.Zero, nil
}

func (m *MockLedgerRepository) ListMismatched(ctx context.Context, limit int) ([]string, error) {
	if m.ListMismatchedFunc != nil {
		return m.ListMismatchedFunc(ctx, limit)
	}
	return nil, nil
}

// MockBoostCatalog serves a fixed package set.
type MockBoostCatalog struct {
	Packages map[string]*domain.BoostPackage
}

func (m *MockBoostCatalog) GetPackage(ctx context.Context, packageID string) (*domain.BoostPackage, error) {
	if pkg, ok := m.Packages[packageID]; ok {
		cp := *pkg
		return &cp, nil
	}
	return nil, domain.ErrBoostPackageUnknown
}

// MockTransaction is a no-op Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	mu    sync.Mutex
	Began []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Began = append(m.Began, tx)
	return tx, nil
}

// MockIDGenerator produces deterministic sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + itoa(m.next)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MockRetrier retries on version conflicts a few times and passes every
// other error straight through.
type MockRetrier struct {
	MaxAttempts int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	attempts := m.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = operation()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// MockSchedulerLock is a process-local SchedulerLock.
type MockSchedulerLock struct {
	mu   sync.Mutex
	held bool

	AcquireFunc func(ctx context.Context) (bool, error)
}

func (m *MockSchedulerLock) Acquire(ctx context.Context) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *MockSchedulerLock) Renew(ctx context.Context) error {
	return nil
}

func (m *MockSchedulerLock) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

// MockCache is an in-memory Cache without TTL handling.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
