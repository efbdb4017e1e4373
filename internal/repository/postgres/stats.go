package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gopay/internal/domain"
)

// statsRowID is the primary key of the singleton stats row.
const statsRowID = "revenue"

// StatsRepository is a PostgreSQL implementation of repository.StatsRepository.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a new PostgreSQL stats repository.
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{q: db}
}

// NewStatsRepositoryWithTx creates a stats repository using a transaction.
func NewStatsRepositoryWithTx(tx *sql.Tx) *StatsRepository {
	return &StatsRepository{q: tx}
}

// Get retrieves the stats rollup. A missing row reads as all zeros.
func (r *StatsRepository) Get(ctx context.Context) (*domain.AdminStats, error) {
	query := `
		SELECT total_transactions, total_revenue, total_platform_fees, updated_at
		FROM admin_stats WHERE id = $1
	`

	var stats domain.AdminStats
	err := r.q.QueryRowContext(ctx, query, statsRowID).Scan(
		&stats.TotalTransactions,
		&stats.TotalRevenue,
		&stats.TotalPlatformFees,
		&stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.AdminStats{}, nil
		}
		return nil, err
	}

	return &stats, nil
}

// Increment atomically adds the deltas to the rollup, creating the
// singleton row on first use.
func (r *StatsRepository) Increment(ctx context.Context, countDelta int64, revenueDelta, feeDelta float64) error {
	query := `
		INSERT INTO admin_stats (id, total_transactions, total_revenue, total_platform_fees, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			total_transactions = admin_stats.total_transactions + EXCLUDED.total_transactions,
			total_revenue = admin_stats.total_revenue + EXCLUDED.total_revenue,
			total_platform_fees = admin_stats.total_platform_fees + EXCLUDED.total_platform_fees,
			updated_at = NOW()
	`

	_, err := r.q.ExecContext(ctx, query, statsRowID, countDelta, revenueDelta, feeDelta)
	return err
}
