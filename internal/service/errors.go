package service

import "errors"

var (
	// ErrInvalidAmount is returned when the payment amount is non-positive
	// or too small to cover the platform fee.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrDriverNotFound is returned when the driver ID does not resolve.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrUnknownTransaction is returned when the transaction ID does not resolve.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrInvalidTransition is returned when a resolve outcome is not a
	// terminal status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotCorrelated is returned when checking status of a transaction
	// that never had a push initiated.
	ErrNotCorrelated = errors.New("transaction has no checkout request id")

	// ErrPushInProgress is returned when a push initiation for the same
	// transaction is already underway.
	ErrPushInProgress = errors.New("push initiation already in progress")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTransactionID is returned when transaction ID is empty.
	ErrInvalidTransactionID = errors.New("invalid transaction id")

	// ErrInvalidPhone is returned when a phone number is empty.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidDriverDetails is returned when registration fields are missing.
	ErrInvalidDriverDetails = errors.New("invalid driver details")

	// ErrDriverAlreadyRegistered is returned when the phone number is taken.
	ErrDriverAlreadyRegistered = errors.New("driver already registered with this phone")
)
