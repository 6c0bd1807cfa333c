package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unifarm/ledger/internal/domain"
)

// ReferralRepository implements usecase.ReferralRepository. Edges are write
// once: reward processing only ever reads them.
type ReferralRepository struct {
	pool *pgxpool.Pool
}

// NewReferralRepository creates a new ReferralRepository.
func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

// CreateEdges inserts the full upline chain for one user in a single batch.
func (r *ReferralRepository) CreateEdges(ctx context.Context, edges []*domain.ReferralEdge) error {
	if len(edges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, edge := range edges {
		batch.Queue(`
			INSERT INTO referral_edges (user_id, upline_user_id, level, created_at)
			VALUES ($1, $2, $3, $4)
		`, edge.UserID, edge.UplineUserID, edge.Level, timeToPgTimestamptz(edge.CreatedAt))
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range edges {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyReferred
			}
			return err
		}
	}

	return nil
}

// GetUpline returns the edges for userID ordered by ascending level.
func (r *ReferralRepository) GetUpline(ctx context.Context, userID int64) ([]*domain.ReferralEdge, error) {
	query := `
		SELECT user_id, upline_user_id, level, created_at
		FROM referral_edges
		WHERE user_id = $1
		ORDER BY level
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*domain.ReferralEdge
	for rows.Next() {
		var (
			edge      domain.ReferralEdge
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&edge.UserID, &edge.UplineUserID, &edge.Level, &createdAt); err != nil {
			return nil, err
		}
		edge.CreatedAt = createdAt.Time
		edges = append(edges, &edge)
	}

	return edges, rows.Err()
}

// HasReferrer reports whether the user already has a level-1 edge.
func (r *ReferralRepository) HasReferrer(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referral_edges WHERE user_id = $1 AND level = 1)`,
		userID,
	).Scan(&exists)

	return exists, err
}
