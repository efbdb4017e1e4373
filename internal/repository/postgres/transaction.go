package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"gopay/internal/domain"
	"gopay/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations, raised by the unique index on checkout_request_id.
const uniqueViolation = "23505"

// TransactionRepository is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

const transactionColumns = `id, driver_id, passenger_phone, amount_paid, platform_fee, driver_amount, status, COALESCE(mpesa_receipt, ''), COALESCE(checkout_request_id, ''), created_at, updated_at`

// Create persists a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, driver_id, passenger_phone, amount_paid, platform_fee, driver_amount, status, mpesa_receipt, checkout_request_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NOW(), NOW())
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.DriverID,
		txn.PassengerPhone,
		txn.AmountPaid,
		txn.PlatformFee,
		txn.DriverAmount,
		txn.Status,
		txn.MpesaReceipt,
		txn.CheckoutRequestID,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByCheckoutID retrieves a transaction by its gateway checkout request ID.
func (r *TransactionRepository) GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE checkout_request_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, checkoutRequestID))
}

// GetByDriverID retrieves up to limit transactions for a driver, newest first.
func (r *TransactionRepository) GetByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE driver_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.QueryContext(ctx, query, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetAll retrieves up to limit transactions, newest first.
func (r *TransactionRepository) GetAll(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// AttachCheckoutID stores the gateway checkout request ID against a
// transaction that does not have one yet. The unique index on
// checkout_request_id rejects reuse of the same ID by another transaction.
func (r *TransactionRepository) AttachCheckoutID(ctx context.Context, id, checkoutRequestID string) error {
	query := `
		UPDATE transactions
		SET checkout_request_id = $1, updated_at = NOW()
		WHERE id = $2 AND checkout_request_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, checkoutRequestID, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrAlreadyCorrelated
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a missing transaction from one already correlated.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrAlreadyCorrelated
	}

	return nil
}

// MarkTerminalIfPending sets a terminal status only if the transaction is
// still pending. The conditional WHERE makes concurrent resolvers race
// safely: exactly one wins, the rest see zero rows.
func (r *TransactionRepository) MarkTerminalIfPending(ctx context.Context, id string, status domain.TransactionStatus, receipt string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $1, mpesa_receipt = COALESCE(NULLIF($2, ''), mpesa_receipt), updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.q.ExecContext(ctx, query, status, receipt, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *TransactionRepository) scanOne(row *sql.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.DriverID,
		&txn.PassengerPhone,
		&txn.AmountPaid,
		&txn.PlatformFee,
		&txn.DriverAmount,
		&txn.Status,
		&txn.MpesaReceipt,
		&txn.CheckoutRequestID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func collectTransactions(rows *sql.Rows) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.DriverID,
			&txn.PassengerPhone,
			&txn.AmountPaid,
			&txn.PlatformFee,
			&txn.DriverAmount,
			&txn.Status,
			&txn.MpesaReceipt,
			&txn.CheckoutRequestID,
			&txn.CreatedAt,
			&txn.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}
