package repository

import (
	"context"

	"gopay/internal/domain"
)

// TransactionRepository defines the persistence operations for transactions.
type TransactionRepository interface {
	// Create persists a new transaction.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByID retrieves a transaction by ID.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByCheckoutID retrieves a transaction by its gateway checkout
	// request ID. Returns ErrNotFound if no transaction carries that ID.
	GetByCheckoutID(ctx context.Context, checkoutRequestID string) (*domain.Transaction, error)

	// GetByDriverID retrieves up to limit transactions for a driver,
	// newest first.
	GetByDriverID(ctx context.Context, driverID string, limit int) ([]*domain.Transaction, error)

	// GetAll retrieves up to limit transactions, newest first.
	GetAll(ctx context.Context, limit int) ([]*domain.Transaction, error)

	// AttachCheckoutID stores the gateway checkout request ID against a
	// transaction. Fails with ErrAlreadyCorrelated if the transaction
	// already has one, or if another transaction already uses the ID.
	AttachCheckoutID(ctx context.Context, id, checkoutRequestID string) error

	// MarkTerminalIfPending sets a terminal status, and the receipt if
	// non-empty, only if the transaction is still pending. Returns whether
	// the transition happened; false without error means another writer
	// already resolved the transaction.
	MarkTerminalIfPending(ctx context.Context, id string, status domain.TransactionStatus, receipt string) (bool, error)
}
