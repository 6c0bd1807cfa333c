package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// IdempotencyRepository implements the ledger-level dedup guard on top of a
// uniquely-indexed table.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// Reserve atomically claims the key inside tx. ON CONFLICT DO NOTHING makes
// the insert race-free: a concurrent holder blocks until its transaction
// resolves, and the loser reads the surviving record. Never implemented as
// a separate read-then-write.
func (r *IdempotencyRepository) Reserve(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, error) {
	insert := `
		INSERT INTO idempotency_keys (key, entry_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`

	pgxTx := pgxTxOf(tx).PgxTx()
	tag, err := pgxTx.Exec(ctx, insert, record.Key, record.EntryID, timeToPgTimestamptz(record.CreatedAt))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 1 {
		return nil, nil
	}

	existing, err := scanIdempotencyRecord(pgxTx.QueryRow(ctx,
		`SELECT key, entry_id, created_at FROM idempotency_keys WHERE key = $1`, record.Key))
	if err != nil {
		return nil, err
	}

	return existing, nil
}

// Get retrieves a record outside any transaction.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	return scanIdempotencyRecord(r.pool.QueryRow(ctx,
		`SELECT key, entry_id, created_at FROM idempotency_keys WHERE key = $1`, key))
}

func scanIdempotencyRecord(row pgx.Row) (*domain.IdempotencyRecord, error) {
	var (
		record    domain.IdempotencyRecord
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&record.Key, &record.EntryID, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	record.CreatedAt = createdAt.Time

	return &record, nil
}
