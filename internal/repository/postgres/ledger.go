package postgres

import (
	"context"
	"database/sql"
)

// Ledger is a PostgreSQL implementation of repository.Ledger. It applies
// the completed transition, the driver credit, and the stats increment in
// a single database transaction.
type Ledger struct {
	db *sql.DB
}

// NewLedger creates a new PostgreSQL ledger.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Complete flips the transaction from pending to completed and applies the
// ledger effects exactly once. The conditional UPDATE is the arbiter:
// concurrent callers for the same transaction see at most one row returned,
// and only that caller's transaction commits the credit and stats writes.
func (l *Ledger) Complete(ctx context.Context, transactionID, receipt string) (bool, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE transactions
		SET status = 'completed', mpesa_receipt = COALESCE(NULLIF($1, ''), mpesa_receipt), updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING driver_id, amount_paid, platform_fee, driver_amount
	`

	var (
		driverID     string
		amountPaid   float64
		platformFee  float64
		driverAmount float64
	)
	err = tx.QueryRowContext(ctx, query, receipt, transactionID).Scan(
		&driverID,
		&amountPaid,
		&platformFee,
		&driverAmount,
	)
	if err == sql.ErrNoRows {
		// Already terminal (or unknown); nothing to apply.
		err = nil
		_ = tx.Rollback()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	txDriverRepo := NewDriverRepositoryWithTx(tx)
	if err = txDriverRepo.Credit(ctx, driverID, driverAmount); err != nil {
		return false, err
	}

	txStatsRepo := NewStatsRepositoryWithTx(tx)
	if err = txStatsRepo.Increment(ctx, 1, amountPaid, platformFee); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}
