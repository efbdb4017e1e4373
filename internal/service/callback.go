package service

import (
	"context"
	"errors"
	"log"

	"gopay/internal/repository"
)

// CallbackService ingests asynchronous result notifications from the
// gateway, correlates them to a transaction, and hands them to the
// lifecycle manager.
type CallbackService struct {
	transactionRepo repository.TransactionRepository
	paymentService  *PaymentService
}

// NewCallbackService creates a new CallbackService.
func NewCallbackService(transactionRepo repository.TransactionRepository, paymentService *PaymentService) *CallbackService {
	return &CallbackService{
		transactionRepo: transactionRepo,
		paymentService:  paymentService,
	}
}

// Callback is a normalized gateway result notification.
type Callback struct {
	ResultCode        int
	ResultDesc        string
	MerchantRequestID string
	CheckoutRequestID string
	MpesaReceipt      string
}

// Handle resolves the transaction the callback refers to. Unknown
// correlation IDs and duplicate deliveries are acknowledged successfully;
// the gateway only retries on error, and only a store failure warrants
// that. Returns a non-nil error exclusively for retryable failures.
func (s *CallbackService) Handle(ctx context.Context, cb Callback) error {
	if cb.CheckoutRequestID == "" {
		log.Printf("callback without checkout request id discarded (desc=%q)", cb.ResultDesc)
		return nil
	}

	txn, err := s.transactionRepo.GetByCheckoutID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Benign: test accounts, or a transaction resolved and the
			// gateway resending anyway.
			log.Printf("callback for unknown checkout request id %s discarded", cb.CheckoutRequestID)
			return nil
		}
		return err
	}

	outcome := outcomeForResultCode(cb.ResultCode)
	if err := s.paymentService.Resolve(ctx, txn.ID, outcome, cb.MpesaReceipt); err != nil {
		return err
	}

	return nil
}
