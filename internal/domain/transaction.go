package domain

import "time"

// TransactionStatus represents the current status of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether the status can never change again.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction represents one passenger payment attempt.
// AmountPaid = PlatformFee + DriverAmount, always.
type Transaction struct {
	ID                string
	DriverID          string
	PassengerPhone    string
	AmountPaid        float64
	PlatformFee       float64
	DriverAmount      float64
	Status            TransactionStatus
	MpesaReceipt      string
	CheckoutRequestID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
