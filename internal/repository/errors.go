package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyCorrelated is returned when a checkout request ID is
	// already attached to a transaction, or is already in use by another
	// transaction. Checkout request IDs are unique across all transactions.
	ErrAlreadyCorrelated = errors.New("checkout request id already attached")
)
