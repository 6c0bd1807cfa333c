package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// PositionRepository implements usecase.PositionRepository.
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `id, user_id, currency, principal, rate_per_period,
	last_accrued_at, active, created_at, updated_at`

// Create inserts a new farming position.
func (r *PositionRepository) Create(ctx context.Context, position *domain.FarmingPosition) error {
	query := `
		INSERT INTO farming_positions (id, user_id, currency, principal,
			rate_per_period, last_accrued_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		position.ID,
		position.UserID,
		string(position.Currency),
		decimalToNumeric(position.Principal),
		decimalToNumeric(position.RatePerPeriod),
		timeToPgTimestamptz(position.LastAccruedAt),
		position.Active,
		timeToPgTimestamptz(position.CreatedAt),
		timeToPgTimestamptz(position.UpdatedAt),
	)

	return err
}

// GetByID retrieves a position by ID.
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*domain.FarmingPosition, error) {
	query := `SELECT ` + positionColumns + ` FROM farming_positions WHERE id = $1`

	return scanPosition(r.pool.QueryRow(ctx, query, id))
}

// ListDue returns active positions whose accrual window has elapsed, oldest
// first.
func (r *PositionRepository) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]*domain.FarmingPosition, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM farming_positions
		WHERE active = true AND last_accrued_at <= $1
		ORDER BY last_accrued_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, timeToPgTimestamptz(cutoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*domain.FarmingPosition
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	return positions, rows.Err()
}

// AdvanceAccrual moves the accrual window forward, joining the caller's
// transaction when tx is non-nil. Monotonic: a stale scheduler run can never
// move the window backwards.
func (r *PositionRepository) AdvanceAccrual(ctx context.Context, tx usecase.Transaction, id string, lastAccruedAt, updatedAt time.Time) error {
	query := `
		UPDATE farming_positions
		SET last_accrued_at = $1, updated_at = $2
		WHERE id = $3 AND last_accrued_at < $1
	`

	var db pgxQuerier = r.pool
	if tx != nil {
		db = pgxTxOf(tx).PgxTx()
	}

	tag, err := db.Exec(ctx, query,
		timeToPgTimestamptz(lastAccruedAt),
		timeToPgTimestamptz(updatedAt),
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the position is gone or another run already advanced past
		// this window; both are safe to treat as done.
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM farming_positions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrPositionNotFound
		}
	}

	return nil
}

// Deactivate marks a position closed.
func (r *PositionRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	query := `
		UPDATE farming_positions
		SET active = false, updated_at = $1
		WHERE id = $2
	`

	tag, err := r.pool.Exec(ctx, query, timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPositionNotFound
	}

	return nil
}

// ListByUser returns all positions for a user, newest first.
func (r *PositionRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.FarmingPosition, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM farming_positions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*domain.FarmingPosition
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	return positions, rows.Err()
}

func scanPosition(row pgx.Row) (*domain.FarmingPosition, error) {
	var (
		position  domain.FarmingPosition
		currency  string
		principal pgtype.Numeric
		rate      pgtype.Numeric
		accruedAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&position.ID,
		&position.UserID,
		&currency,
		&principal,
		&rate,
		&accruedAt,
		&position.Active,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}

	position.Currency = domain.Currency(currency)
	position.Principal = numericToDecimal(principal)
	position.RatePerPeriod = numericToDecimal(rate)
	position.LastAccruedAt = accruedAt.Time
	position.CreatedAt = createdAt.Time
	position.UpdatedAt = updatedAt.Time

	return &position, nil
}
