package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gopay/internal/domain"
	"gopay/internal/service"
)

// ──────────────────────────────────────────────
// 2. TRANSACTION LIFECYCLE
// ──────────────────────────────────────────────

// newPaymentService wires a PaymentService over fresh mocks with a
// (10%, 0) fee policy.
func newPaymentService() (*service.PaymentService, *MockTransactionRepository, *MockDriverRepository, *MockStatsRepository, *MockGateway) {
	txnRepo := NewMockTransactionRepository()
	driverRepo := NewMockDriverRepository()
	statsRepo := NewMockStatsRepository()
	ledger := NewMockLedger(txnRepo, driverRepo, statsRepo)
	gateway := NewMockGateway()
	lockStore := NewMockLockStore()

	svc := service.NewPaymentService(txnRepo, driverRepo, ledger, gateway, lockStore, nil, service.FeePolicy{Percent: 10})
	return svc, txnRepo, driverRepo, statsRepo, gateway
}

func TestCreatePending_ComputesFeeSplit(t *testing.T) {
	t.Parallel()

	svc, _, driverRepo, _, _ := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	txn, err := svc.CreatePending(context.Background(), "driver-1", "254700000001", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != domain.TransactionStatusPending {
		t.Errorf("expected pending, got %s", txn.Status)
	}
	if txn.PlatformFee != 10 {
		t.Errorf("expected platform fee 10, got %v", txn.PlatformFee)
	}
	if txn.DriverAmount != 90 {
		t.Errorf("expected driver amount 90, got %v", txn.DriverAmount)
	}
	if txn.CheckoutRequestID != "" {
		t.Error("new transaction should have no checkout request id")
	}
}

func TestCreatePending_RejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, _, _ := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	for _, amount := range []float64{0, -1, -100} {
		_, err := svc.CreatePending(context.Background(), "driver-1", "254700000001", amount)
		if !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if txnRepo.CountTransactions() != 0 {
		t.Error("no transaction should be persisted for invalid amounts")
	}
}

func TestCreatePending_RejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	svc, txnRepo, _, _, _ := newPaymentService()

	_, err := svc.CreatePending(context.Background(), "nobody", "254700000001", 100)
	if !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}

	if txnRepo.CountTransactions() != 0 {
		t.Error("no transaction should be persisted for unknown drivers")
	}
}

func TestResolve_CompletedAppliesLedgerOnce(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, statsRepo, _ := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:           "txn-1",
		DriverID:     "driver-1",
		AmountPaid:   100,
		PlatformFee:  10,
		DriverAmount: 90,
		Status:       domain.TransactionStatusPending,
	})

	ctx := context.Background()

	// Resolve twice with identical arguments.
	if err := svc.Resolve(ctx, "txn-1", domain.TransactionStatusCompleted, "RCPT1"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if err := svc.Resolve(ctx, "txn-1", domain.TransactionStatusCompleted, "RCPT1"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	txn := txnRepo.GetTransaction("txn-1")
	if txn.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed, got %s", txn.Status)
	}
	if txn.MpesaReceipt != "RCPT1" {
		t.Errorf("expected receipt RCPT1, got %q", txn.MpesaReceipt)
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.Balance != 90 {
		t.Errorf("expected balance credited exactly once (90), got %v", driver.Balance)
	}
	if driver.TotalEarnings != 90 {
		t.Errorf("expected total earnings 90, got %v", driver.TotalEarnings)
	}

	stats := statsRepo.GetStats()
	if stats.TotalTransactions != 1 {
		t.Errorf("expected 1 counted transaction, got %d", stats.TotalTransactions)
	}
	if stats.TotalRevenue != 100 {
		t.Errorf("expected revenue 100, got %v", stats.TotalRevenue)
	}
	if stats.TotalPlatformFees != 10 {
		t.Errorf("expected fees 10, got %v", stats.TotalPlatformFees)
	}
}

func TestResolve_FirstTerminalWriteWins(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, _, _ := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:           "txn-1",
		DriverID:     "driver-1",
		AmountPaid:   100,
		PlatformFee:  10,
		DriverAmount: 90,
		Status:       domain.TransactionStatusPending,
	})

	ctx := context.Background()

	if err := svc.Resolve(ctx, "txn-1", domain.TransactionStatusCompleted, "RCPT1"); err != nil {
		t.Fatalf("resolve completed: %v", err)
	}

	// A late failure for the same transaction is a no-op, not an error.
	if err := svc.Resolve(ctx, "txn-1", domain.TransactionStatusFailed, ""); err != nil {
		t.Fatalf("late failed resolve should succeed as no-op: %v", err)
	}

	txn := txnRepo.GetTransaction("txn-1")
	if txn.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed to stick, got %s", txn.Status)
	}

	if driverRepo.GetDriver("driver-1").Balance != 90 {
		t.Error("balance should be unchanged by the losing resolve")
	}
}

func TestResolve_FailedAndCancelledSkipLedger(t *testing.T) {
	t.Parallel()

	for _, outcome := range []domain.TransactionStatus{domain.TransactionStatusFailed, domain.TransactionStatusCancelled} {
		outcome := outcome
		t.Run(string(outcome), func(t *testing.T) {
			t.Parallel()

			svc, txnRepo, driverRepo, statsRepo, _ := newPaymentService()
			driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
			txnRepo.AddTransaction(&domain.Transaction{
				ID:           "txn-1",
				DriverID:     "driver-1",
				AmountPaid:   100,
				PlatformFee:  10,
				DriverAmount: 90,
				Status:       domain.TransactionStatusPending,
			})

			if err := svc.Resolve(context.Background(), "txn-1", outcome, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := txnRepo.GetTransaction("txn-1").Status; got != outcome {
				t.Errorf("expected %s, got %s", outcome, got)
			}
			if driverRepo.GetDriver("driver-1").Balance != 0 {
				t.Error("balance must not move on a non-completed outcome")
			}
			if statsRepo.GetStats().TotalTransactions != 0 {
				t.Error("stats must not move on a non-completed outcome")
			}
		})
	}
}

func TestResolve_RejectsNonTerminalOutcome(t *testing.T) {
	t.Parallel()

	svc, txnRepo, _, _, _ := newPaymentService()
	txnRepo.AddTransaction(&domain.Transaction{ID: "txn-1", Status: domain.TransactionStatusPending})

	err := svc.Resolve(context.Background(), "txn-1", domain.TransactionStatusPending, "")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestResolve_UnknownTransaction(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newPaymentService()

	err := svc.Resolve(context.Background(), "missing", domain.TransactionStatusCompleted, "")
	if !errors.Is(err, service.ErrUnknownTransaction) {
		t.Errorf("expected ErrUnknownTransaction, got %v", err)
	}
}

func TestResolve_StoreFailureLeavesTransactionPending(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()
	driverRepo := NewMockDriverRepository()
	statsRepo := NewMockStatsRepository()
	ledger := NewMockLedger(txnRepo, driverRepo, statsRepo)
	ledger.CompleteError = errors.New("store unavailable")
	svc := service.NewPaymentService(txnRepo, driverRepo, ledger, NewMockGateway(), nil, nil, service.FeePolicy{Percent: 10})

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:           "txn-1",
		DriverID:     "driver-1",
		AmountPaid:   100,
		PlatformFee:  10,
		DriverAmount: 90,
		Status:       domain.TransactionStatusPending,
	})

	err := svc.Resolve(context.Background(), "txn-1", domain.TransactionStatusCompleted, "RCPT1")
	if err == nil {
		t.Fatal("expected the store failure to surface")
	}

	// The whole unit aborted: still pending, nothing credited, so the
	// provider's retry can succeed later.
	if txnRepo.GetTransaction("txn-1").Status != domain.TransactionStatusPending {
		t.Error("transaction should remain pending after an aborted unit")
	}
	if driverRepo.GetDriver("driver-1").Balance != 0 {
		t.Error("no partial credit may survive an aborted unit")
	}
}

// ──────────────────────────────────────────────
// 3. CONCURRENCY
// ──────────────────────────────────────────────

func TestResolve_ConcurrentCompletionsCreditOnce(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, statsRepo, _ := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:           "txn-1",
		DriverID:     "driver-1",
		AmountPaid:   100,
		PlatformFee:  10,
		DriverAmount: 90,
		Status:       domain.TransactionStatusPending,
	})

	const resolvers = 20

	var wg sync.WaitGroup
	errs := make(chan error, resolvers)
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Resolve(context.Background(), "txn-1", domain.TransactionStatusCompleted, "RCPT1")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent resolve returned error: %v", err)
		}
	}

	if got := driverRepo.GetDriver("driver-1").Balance; got != 90 {
		t.Errorf("expected exactly one credit (balance 90), got %v", got)
	}
	if got := statsRepo.GetStats().TotalTransactions; got != 1 {
		t.Errorf("expected exactly one stats increment, got %d", got)
	}
}

func TestInitiatePush_ConcurrentCallersSendOnePush(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, _, gateway := newPaymentService()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:             "txn-1",
		DriverID:       "driver-1",
		PassengerPhone: "254700000001",
		AmountPaid:     100,
		PlatformFee:    10,
		DriverAmount:   90,
		Status:         domain.TransactionStatusPending,
	})

	const callers = 10

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Losers fail with ErrPushInProgress or ErrAlreadyCorrelated;
			// only the gateway call count matters here.
			_, _ = svc.InitiatePush(context.Background(), "txn-1")
		}()
	}
	wg.Wait()

	if gateway.PushCallCount != 1 {
		t.Errorf("expected exactly one gateway push, got %d", gateway.PushCallCount)
	}
	if got := txnRepo.GetTransaction("txn-1").CheckoutRequestID; got != gateway.CheckoutID {
		t.Errorf("expected checkout id %q attached, got %q", gateway.CheckoutID, got)
	}
}
