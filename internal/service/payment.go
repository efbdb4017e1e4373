package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"gopay/internal/domain"
	"gopay/internal/mpesa"
	"gopay/internal/redis"
	"gopay/internal/repository"
)

// Gateway is the interface for the mobile-money push payment provider.
type Gateway interface {
	// STKPush prompts the passenger's device and returns the gateway's
	// checkout request ID for callback correlation.
	STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (string, error)

	// QueryStatus returns the current outcome of an initiated push.
	QueryStatus(ctx context.Context, checkoutRequestID string) (*mpesa.StatusResult, error)
}

// pushLockTTL bounds how long a crashed initiation can hold the push lock.
const pushLockTTL = 90 * time.Second

// transactionListLimit caps history queries.
const transactionListLimit = 100

// PaymentService owns the transaction lifecycle: creation in pending
// state, push initiation, and the single resolve path that applies the
// ledger mutation exactly once.
type PaymentService struct {
	transactionRepo repository.TransactionRepository
	driverRepo      repository.DriverRepository
	ledger          repository.Ledger
	gateway         Gateway
	lockStore       redis.LockStoreInterface
	cacheStore      redis.CacheStoreInterface
	fees            FeePolicy
}

// NewPaymentService creates a new PaymentService. lockStore and cacheStore
// may be nil, in which case the corresponding guards are skipped.
func NewPaymentService(
	transactionRepo repository.TransactionRepository,
	driverRepo repository.DriverRepository,
	ledger repository.Ledger,
	gateway Gateway,
	lockStore redis.LockStoreInterface,
	cacheStore redis.CacheStoreInterface,
	fees FeePolicy,
) *PaymentService {
	return &PaymentService{
		transactionRepo: transactionRepo,
		driverRepo:      driverRepo,
		ledger:          ledger,
		gateway:         gateway,
		lockStore:       lockStore,
		cacheStore:      cacheStore,
		fees:            fees,
	}
}

// CreatePending validates the request, applies the fee policy, and
// persists a new transaction in pending state. No gateway call is made.
func (s *PaymentService) CreatePending(ctx context.Context, driverID, passengerPhone string, amount float64) (*domain.Transaction, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if passengerPhone == "" {
		return nil, ErrInvalidPhone
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	fee, driverAmount := s.fees.Split(amount)
	if driverAmount <= 0 {
		// The fee would swallow the whole payment.
		return nil, ErrInvalidAmount
	}

	txn := &domain.Transaction{
		ID:             uuid.New().String(),
		DriverID:       driverID,
		PassengerPhone: passengerPhone,
		AmountPaid:     amount,
		PlatformFee:    fee,
		DriverAmount:   driverAmount,
		Status:         domain.TransactionStatusPending,
	}

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// InitiatePush asks the gateway to prompt the passenger and attaches the
// returned checkout request ID to the transaction. A gateway failure
// resolves the transaction to failed; the ledger is never touched.
func (s *PaymentService) InitiatePush(ctx context.Context, transactionID string) (string, error) {
	if transactionID == "" {
		return "", ErrInvalidTransactionID
	}

	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownTransaction
		}
		return "", err
	}

	if txn.CheckoutRequestID != "" {
		return "", repository.ErrAlreadyCorrelated
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquirePushLock(ctx, transactionID, pushLockTTL)
		if err != nil {
			return "", err
		}
		if !locked {
			return "", ErrPushInProgress
		}
		defer func() {
			_ = s.lockStore.ReleasePushLock(ctx, transactionID)
		}()

		// Re-check under the lock: a racing caller may have initiated
		// and released between our first read and the acquire.
		txn, err = s.transactionRepo.GetByID(ctx, transactionID)
		if err != nil {
			return "", err
		}
		if txn.CheckoutRequestID != "" {
			return "", repository.ErrAlreadyCorrelated
		}
	}

	checkoutID, err := s.gateway.STKPush(ctx, txn.PassengerPhone, txn.AmountPaid, txn.DriverID, "GoPay ride payment")
	if err != nil {
		// Leave an auditable terminal record rather than an ambiguous
		// pending one. Resolve never credits on a failed outcome.
		if resolveErr := s.Resolve(ctx, transactionID, domain.TransactionStatusFailed, ""); resolveErr != nil {
			log.Printf("failed to mark transaction %s failed after gateway error: %v", transactionID, resolveErr)
		}
		return "", err
	}

	if err := s.transactionRepo.AttachCheckoutID(ctx, transactionID, checkoutID); err != nil {
		return "", err
	}

	return checkoutID, nil
}

// RequestPayment is the full payment-request unit: create the pending
// transaction, then initiate the push. The returned transaction reflects
// the post-initiation state.
func (s *PaymentService) RequestPayment(ctx context.Context, driverID, passengerPhone string, amount float64) (*domain.Transaction, error) {
	txn, err := s.CreatePending(ctx, driverID, passengerPhone, amount)
	if err != nil {
		return nil, err
	}

	checkoutID, err := s.InitiatePush(ctx, txn.ID)
	if err != nil {
		// The transaction exists either way; hand it back with the error
		// so the caller can show the failed attempt.
		if current, getErr := s.transactionRepo.GetByID(ctx, txn.ID); getErr == nil {
			return current, err
		}
		return txn, err
	}

	txn.CheckoutRequestID = checkoutID
	return txn, nil
}

// Resolve is the single mutation entry point for terminal transitions,
// shared by the callback handler, the status poll, and any reconciliation
// sweep. It is idempotent: a transaction that is already terminal is left
// untouched and the call succeeds. First terminal write wins.
func (s *PaymentService) Resolve(ctx context.Context, transactionID string, outcome domain.TransactionStatus, receipt string) error {
	if transactionID == "" {
		return ErrInvalidTransactionID
	}

	if !outcome.IsTerminal() {
		return ErrInvalidTransition
	}

	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownTransaction
		}
		return err
	}

	if txn.Status.IsTerminal() {
		if txn.Status != outcome {
			log.Printf("transaction %s already %s; ignoring late %s", transactionID, txn.Status, outcome)
		}
		return nil
	}

	var transitioned bool
	if outcome == domain.TransactionStatusCompleted {
		// Status flip, driver credit and stats increment commit as one
		// unit inside the ledger; a lost race reads as no transition.
		transitioned, err = s.ledger.Complete(ctx, transactionID, receipt)
	} else {
		transitioned, err = s.transactionRepo.MarkTerminalIfPending(ctx, transactionID, outcome, receipt)
	}
	if err != nil {
		return err
	}

	if !transitioned {
		// A concurrent resolver won; that is success, not conflict.
		return nil
	}

	if outcome == domain.TransactionStatusCompleted && s.cacheStore != nil {
		// Best effort: stale cache entries expire on their own.
		_ = s.cacheStore.InvalidateDriver(ctx, txn.DriverID)
		_ = s.cacheStore.InvalidateStats(ctx)
	}

	return nil
}

// CheckStatus polls the gateway for the outcome of an initiated push and
// resolves the transaction through the same path a callback would take.
// A push the passenger has not answered yet leaves the transaction pending.
func (s *PaymentService) CheckStatus(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status.IsTerminal() {
		return txn, nil
	}

	if txn.CheckoutRequestID == "" {
		return nil, ErrNotCorrelated
	}

	status, err := s.gateway.QueryStatus(ctx, txn.CheckoutRequestID)
	if err != nil {
		return nil, err
	}

	if status.Pending {
		return txn, nil
	}

	outcome := outcomeForResultCode(status.ResultCode)
	if err := s.Resolve(ctx, transactionID, outcome, status.Receipt); err != nil {
		return nil, err
	}

	return s.GetTransaction(ctx, transactionID)
}

// GetTransaction retrieves a transaction by ID.
func (s *PaymentService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if transactionID == "" {
		return nil, ErrInvalidTransactionID
	}

	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownTransaction
		}
		return nil, err
	}

	return txn, nil
}

// ListDriverTransactions retrieves recent transactions for a driver.
func (s *PaymentService) ListDriverTransactions(ctx context.Context, driverID string) ([]*domain.Transaction, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.transactionRepo.GetByDriverID(ctx, driverID, transactionListLimit)
}

// ListAllTransactions retrieves recent transactions across all drivers.
func (s *PaymentService) ListAllTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetAll(ctx, transactionListLimit)
}

// outcomeForResultCode maps a gateway result code to a terminal status.
func outcomeForResultCode(code int) domain.TransactionStatus {
	switch code {
	case mpesa.ResultCodeSuccess:
		return domain.TransactionStatusCompleted
	case mpesa.ResultCodeCancelled:
		return domain.TransactionStatusCancelled
	default:
		return domain.TransactionStatusFailed
	}
}
