package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. Entries are append
// only; there is deliberately no update or delete here.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, account_id, user_id, currency, type, amount, idempotency_key,
	source_ref, previous_balance, current_balance, account_version, created_at`

// Create inserts a new entry inside tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, account_id, user_id, currency, type, amount,
			idempotency_key, source_ref, previous_balance, current_balance,
			account_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTxOf(tx).PgxTx().Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.UserID,
		string(entry.Currency),
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.IdempotencyKey,
		entry.SourceRef,
		decimalToNumeric(entry.PreviousBalance),
		decimalToNumeric(entry.CurrentBalance),
		entry.AccountVersion,
		timeToPgTimestamptz(entry.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateOperation
	}

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`

	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx retrieves an entry inside tx; used for idempotent replays.
func (r *EntryRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`

	return scanEntry(pgxTxOf(tx).PgxTx().QueryRow(ctx, query, id))
}

// ListByAccount lists entries for an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumByAccount returns the signed sum of all entries for an account.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE account_id = $1
	`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry     domain.Entry
		currency  string
		entryType string
		amount    pgtype.Numeric
		prev      pgtype.Numeric
		current   pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.UserID,
		&currency,
		&entryType,
		&amount,
		&entry.IdempotencyKey,
		&entry.SourceRef,
		&prev,
		&current,
		&entry.AccountVersion,
		&createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.Currency = domain.Currency(currency)
	entry.Type = domain.EntryType(entryType)
	entry.Amount = numericToDecimal(amount)
	entry.PreviousBalance = numericToDecimal(prev)
	entry.CurrentBalance = numericToDecimal(current)
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
