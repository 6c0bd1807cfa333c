package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AccountEntrySum returns the stored balance and the entry sum for one
// account in a single statement, so both sides come from the same snapshot.
func (r *LedgerRepository) AccountEntrySum(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT a.balance,
		       COALESCE((SELECT SUM(e.amount) FROM ledger_entries e WHERE e.account_id = a.id), 0)
		FROM accounts a
		WHERE a.id = $1
	`

	var balance, entrySum pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&balance, &entrySum)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, decimal.Zero, domain.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(balance), numericToDecimal(entrySum), nil
}

// ListMismatched returns accounts whose projection drifted from their
// entries. Healthy systems return nothing here.
func (r *LedgerRepository) ListMismatched(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT a.id
		FROM accounts a
		WHERE a.balance <> COALESCE(
			(SELECT SUM(e.amount) FROM ledger_entries e WHERE e.account_id = a.id), 0)
		ORDER BY a.id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
