package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// AccountRepository defines data access for balance projections.
type AccountRepository interface {
	GetByUser(ctx context.Context, userID int64, currency domain.Currency) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx Transaction, userID int64, currency domain.Currency) (*domain.Account, error)
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	// UpdateBalance applies a new balance iff the stored version still equals
	// expectedVersion, bumping it by one. Returns domain.ErrConcurrencyConflict
	// when the row moved underneath us.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for the append-only ledger.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// PositionRepository defines data access for farming positions.
type PositionRepository interface {
	Create(ctx context.Context, position *domain.FarmingPosition) error
	GetByID(ctx context.Context, id string) (*domain.FarmingPosition, error)
	// ListDue returns active positions whose last accrual is at or before
	// cutoff, oldest first.
	ListDue(ctx context.Context, cutoff time.Time, limit int) ([]*domain.FarmingPosition, error)
	// AdvanceAccrual moves the accrual window forward. A nil tx runs it
	// standalone; a non-nil tx joins the caller's transaction so the window
	// advance commits or rolls back with the credit it belongs to.
	AdvanceAccrual(ctx context.Context, tx Transaction, id string, lastAccruedAt, updatedAt time.Time) error
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.FarmingPosition, error)
}

// ReferralRepository defines data access for the upline graph.
type ReferralRepository interface {
	CreateEdges(ctx context.Context, edges []*domain.ReferralEdge) error
	// GetUpline returns the edges for userID ordered by ascending level.
	GetUpline(ctx context.Context, userID int64) ([]*domain.ReferralEdge, error)
	HasReferrer(ctx context.Context, userID int64) (bool, error)
}

// IdempotencyRepository is the dedup guard. Reserve must be a single atomic
// insert-if-not-exists against a unique key, never a read-then-write.
type IdempotencyRepository interface {
	// Reserve inserts the record inside tx. When the key is already taken it
	// returns the existing record and leaves the store untouched; a nil
	// existing record means the reservation is fresh.
	Reserve(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error)
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// AccountEntrySum returns the stored balance and the sum of all entries
	// for one account in a single snapshot.
	AccountEntrySum(ctx context.Context, accountID string) (balance, entrySum decimal.Decimal, err error)
	// ListMismatched returns IDs of accounts whose balance differs from the
	// sum of their entries.
	ListMismatched(ctx context.Context, limit int) ([]string, error)
}

// BoostCatalog supplies purchasable boost packages. Owned by an external
// collaborator; consumed read-only here.
type BoostCatalog interface {
	GetPackage(ctx context.Context, packageID string) (*domain.BoostPackage, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient failures (deadlocks,
// serialization failures, version conflicts) with bounded backoff.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// SchedulerLock is the cluster-wide mutex around scheduler ticks. The lease
// expires on its own if the holder crashes; Renew extends it mid-tick.
type SchedulerLock interface {
	// Acquire returns false when another instance holds the lock.
	Acquire(ctx context.Context) (bool, error)
	Renew(ctx context.Context) error
	Release(ctx context.Context) error
}

// Cache defines caching operations for balance reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles HTTP-edge idempotency key storage for response
// replay. Non-authoritative: the ledger-level guard is IdempotencyRepository.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
