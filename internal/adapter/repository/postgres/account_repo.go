package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, currency, balance, version, created_at, updated_at`

// GetByUser retrieves the account for (user, currency) without locking.
func (r *AccountRepository) GetByUser(ctx context.Context, userID int64, currency domain.Currency) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND currency = $2
	`

	return scanAccount(r.pool.QueryRow(ctx, query, userID, string(currency)))
}

// GetForUpdate retrieves the account with a FOR UPDATE row lock, serializing
// concurrent mutations on the same account.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, userID int64, currency domain.Currency) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND currency = $2
		FOR UPDATE
	`

	return scanAccount(pgxTxOf(tx).PgxTx().QueryRow(ctx, query, userID, string(currency)))
}

// CreateTx inserts a lazily-created account inside tx. A concurrent first
// mutation of the same (user, currency) surfaces as a version conflict so
// the caller retries and finds the row.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, currency, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTxOf(tx).PgxTx().Exec(ctx, query,
		account.ID,
		account.UserID,
		string(account.Currency),
		decimalToNumeric(account.Balance),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrConcurrencyConflict
	}

	return err
}

// UpdateBalance applies the new balance with a CAS on the version counter.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	tag, err := pgxTxOf(tx).PgxTx().Exec(ctx, query,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
		id,
		expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrConcurrencyConflict)
	}

	return nil
}

// ListByUser returns every account a user holds.
func (r *AccountRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
		ORDER BY currency
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		currency  string
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&currency,
		&balance,
		&account.Version,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Currency = domain.Currency(currency)
	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
