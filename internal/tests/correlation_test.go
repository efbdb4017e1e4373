package tests

import (
	"context"
	"errors"
	"testing"

	"gopay/internal/domain"
	"gopay/internal/repository"
)

// ──────────────────────────────────────────────
// 4. CORRELATION
// ──────────────────────────────────────────────

func TestAttachCheckoutID_SecondAttachFails(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()
	txnRepo.AddTransaction(&domain.Transaction{ID: "txn-1", Status: domain.TransactionStatusPending})

	ctx := context.Background()

	if err := txnRepo.AttachCheckoutID(ctx, "txn-1", "ws_CO_1"); err != nil {
		t.Fatalf("first attach: %v", err)
	}

	err := txnRepo.AttachCheckoutID(ctx, "txn-1", "ws_CO_2")
	if !errors.Is(err, repository.ErrAlreadyCorrelated) {
		t.Errorf("expected ErrAlreadyCorrelated, got %v", err)
	}

	// The original correlation survives.
	if got := txnRepo.GetTransaction("txn-1").CheckoutRequestID; got != "ws_CO_1" {
		t.Errorf("expected ws_CO_1 to stick, got %q", got)
	}
}

func TestAttachCheckoutID_SameIDOnTwoTransactionsFails(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()
	txnRepo.AddTransaction(&domain.Transaction{ID: "txn-1", Status: domain.TransactionStatusPending})
	txnRepo.AddTransaction(&domain.Transaction{ID: "txn-2", Status: domain.TransactionStatusPending})

	ctx := context.Background()

	if err := txnRepo.AttachCheckoutID(ctx, "txn-1", "ws_CO_1"); err != nil {
		t.Fatalf("first attach: %v", err)
	}

	err := txnRepo.AttachCheckoutID(ctx, "txn-2", "ws_CO_1")
	if !errors.Is(err, repository.ErrAlreadyCorrelated) {
		t.Errorf("expected ErrAlreadyCorrelated for duplicate checkout id, got %v", err)
	}

	if got := txnRepo.GetTransaction("txn-2").CheckoutRequestID; got != "" {
		t.Errorf("txn-2 should have no checkout id, got %q", got)
	}
}

func TestAttachCheckoutID_UnknownTransaction(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()

	err := txnRepo.AttachCheckoutID(context.Background(), "missing", "ws_CO_1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByCheckoutID_ResolvesTransaction(t *testing.T) {
	t.Parallel()

	txnRepo := NewMockTransactionRepository()
	txnRepo.AddTransaction(&domain.Transaction{
		ID:                "txn-1",
		CheckoutRequestID: "ws_CO_1",
		Status:            domain.TransactionStatusPending,
	})

	ctx := context.Background()

	txn, err := txnRepo.GetByCheckoutID(ctx, "ws_CO_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID != "txn-1" {
		t.Errorf("expected txn-1, got %s", txn.ID)
	}

	if _, err := txnRepo.GetByCheckoutID(ctx, "ws_CO_unknown"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown checkout id, got %v", err)
	}
}
