package tests

import (
	"context"
	"errors"
	"testing"

	"gopay/internal/domain"
	"gopay/internal/mpesa"
	"gopay/internal/service"
)

// ──────────────────────────────────────────────
// 5. CALLBACK INGESTION
// ──────────────────────────────────────────────

func newCallbackService() (*service.CallbackService, *MockTransactionRepository, *MockDriverRepository, *MockStatsRepository) {
	txnRepo := NewMockTransactionRepository()
	driverRepo := NewMockDriverRepository()
	statsRepo := NewMockStatsRepository()
	ledger := NewMockLedger(txnRepo, driverRepo, statsRepo)
	paymentSvc := service.NewPaymentService(txnRepo, driverRepo, ledger, NewMockGateway(), nil, nil, service.FeePolicy{Percent: 10})
	return service.NewCallbackService(txnRepo, paymentSvc), txnRepo, driverRepo, statsRepo
}

func addPendingTransaction(txnRepo *MockTransactionRepository, driverRepo *MockDriverRepository) {
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1"})
	txnRepo.AddTransaction(&domain.Transaction{
		ID:                "txn-1",
		DriverID:          "driver-1",
		AmountPaid:        100,
		PlatformFee:       10,
		DriverAmount:      90,
		Status:            domain.TransactionStatusPending,
		CheckoutRequestID: "ws_CO_1",
	})
}

func TestCallback_SuccessCompletesTransaction(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, statsRepo := newCallbackService()
	addPendingTransaction(txnRepo, driverRepo)

	err := svc.Handle(context.Background(), service.Callback{
		ResultCode:        mpesa.ResultCodeSuccess,
		ResultDesc:        "The service request is processed successfully.",
		CheckoutRequestID: "ws_CO_1",
		MpesaReceipt:      "RCPT1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn := txnRepo.GetTransaction("txn-1")
	if txn.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed, got %s", txn.Status)
	}
	if txn.MpesaReceipt != "RCPT1" {
		t.Errorf("expected receipt RCPT1, got %q", txn.MpesaReceipt)
	}
	if driverRepo.GetDriver("driver-1").Balance != 90 {
		t.Errorf("expected balance 90, got %v", driverRepo.GetDriver("driver-1").Balance)
	}
	if statsRepo.GetStats().TotalRevenue != 100 {
		t.Errorf("expected revenue 100, got %v", statsRepo.GetStats().TotalRevenue)
	}
}

func TestCallback_FailureCodeFailsTransaction(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, _ := newCallbackService()
	addPendingTransaction(txnRepo, driverRepo)

	err := svc.Handle(context.Background(), service.Callback{
		ResultCode:        1037, // timeout reaching the passenger
		ResultDesc:        "DS timeout",
		CheckoutRequestID: "ws_CO_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := txnRepo.GetTransaction("txn-1").Status; got != domain.TransactionStatusFailed {
		t.Errorf("expected failed, got %s", got)
	}
	if driverRepo.GetDriver("driver-1").Balance != 0 {
		t.Error("failed payment must not credit the driver")
	}
}

func TestCallback_CancellationCodeCancelsTransaction(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, _ := newCallbackService()
	addPendingTransaction(txnRepo, driverRepo)

	err := svc.Handle(context.Background(), service.Callback{
		ResultCode:        mpesa.ResultCodeCancelled,
		ResultDesc:        "Request cancelled by user",
		CheckoutRequestID: "ws_CO_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := txnRepo.GetTransaction("txn-1").Status; got != domain.TransactionStatusCancelled {
		t.Errorf("expected cancelled, got %s", got)
	}
	if driverRepo.GetDriver("driver-1").Balance != 0 {
		t.Error("cancelled payment must not credit the driver")
	}
}

func TestCallback_UnknownCorrelationIsAcknowledged(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, statsRepo := newCallbackService()
	addPendingTransaction(txnRepo, driverRepo)

	// The gateway expects a success acknowledgment even when we have
	// nothing to correlate the callback to.
	err := svc.Handle(context.Background(), service.Callback{
		ResultCode:        mpesa.ResultCodeSuccess,
		CheckoutRequestID: "ws_CO_unknown",
		MpesaReceipt:      "RCPT9",
	})
	if err != nil {
		t.Fatalf("unknown correlation should not error: %v", err)
	}

	if got := txnRepo.GetTransaction("txn-1").Status; got != domain.TransactionStatusPending {
		t.Errorf("no transaction should be mutated, got %s", got)
	}
	if statsRepo.GetStats().TotalTransactions != 0 {
		t.Error("stats must be untouched by an unknown callback")
	}
}

func TestCallback_DuplicateDeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, txnRepo, driverRepo, statsRepo := newCallbackService()
	addPendingTransaction(txnRepo, driverRepo)

	cb := service.Callback{
		ResultCode:        mpesa.ResultCodeSuccess,
		CheckoutRequestID: "ws_CO_1",
		MpesaReceipt:      "RCPT1",
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := svc.Handle(ctx, cb); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}

	if driverRepo.GetDriver("driver-1").Balance != 90 {
		t.Errorf("expected one credit despite redelivery, balance %v", driverRepo.GetDriver("driver-1").Balance)
	}
	if statsRepo.GetStats().TotalTransactions != 1 {
		t.Errorf("expected one stats increment, got %d", statsRepo.GetStats().TotalTransactions)
	}
}

func TestCallback_StoreFailureIsRetryable(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()
	driverRepo := NewMockDriverRepository()
	statsRepo := NewMockStatsRepository()
	ledger := NewMockLedger(txnRepo, driverRepo, statsRepo)
	ledger.CompleteError = errors.New("store unavailable")
	paymentSvc := service.NewPaymentService(txnRepo, driverRepo, ledger, NewMockGateway(), nil, nil, service.FeePolicy{Percent: 10})
	svc := service.NewCallbackService(txnRepo, paymentSvc)

	addPendingTransaction(txnRepo, driverRepo)

	cb := service.Callback{
		ResultCode:        mpesa.ResultCodeSuccess,
		CheckoutRequestID: "ws_CO_1",
		MpesaReceipt:      "RCPT1",
	}

	ctx := context.Background()
	if err := svc.Handle(ctx, cb); err == nil {
		t.Fatal("expected store failure to surface so the gateway retries")
	}

	// Retry after the store recovers succeeds and credits once.
	ledger.CompleteError = nil
	if err := svc.Handle(ctx, cb); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}

	if driverRepo.GetDriver("driver-1").Balance != 90 {
		t.Errorf("expected balance 90 after retry, got %v", driverRepo.GetDriver("driver-1").Balance)
	}
}
