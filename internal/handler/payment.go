package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopay/internal/domain"
	"gopay/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RequestPaymentRequest is the HTTP request body for requesting a payment.
type RequestPaymentRequest struct {
	DriverID       string  `json:"driver_id"`
	PassengerPhone string  `json:"passenger_phone"`
	Amount         float64 `json:"amount"`
}

// TransactionResponse is the HTTP response for transaction data.
type TransactionResponse struct {
	ID                string  `json:"id"`
	DriverID          string  `json:"driver_id"`
	PassengerPhone    string  `json:"passenger_phone"`
	AmountPaid        float64 `json:"amount_paid"`
	PlatformFee       float64 `json:"platform_fee"`
	DriverAmount      float64 `json:"driver_amount"`
	Status            string  `json:"status"`
	MpesaReceipt      string  `json:"mpesa_receipt,omitempty"`
	CheckoutRequestID string  `json:"checkout_request_id,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// RequestPayment handles POST /v1/payments
func (h *PaymentHandler) RequestPayment(c *gin.Context) {
	var req RequestPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, err := h.paymentService.RequestPayment(c.Request.Context(), req.DriverID, req.PassengerPhone, req.Amount)
	if err != nil {
		// A transaction may exist in failed state; the error code tells
		// the passenger-facing page what happened.
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// GetTransaction handles GET /v1/payments/:id
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	txn, err := h.paymentService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTransactionResponse(txn))
}

// CheckStatus handles POST /v1/payments/:id/check
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	txn, err := h.paymentService.CheckStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTransactionResponse(txn))
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID,
		DriverID:          t.DriverID,
		PassengerPhone:    t.PassengerPhone,
		AmountPaid:        t.AmountPaid,
		PlatformFee:       t.PlatformFee,
		DriverAmount:      t.DriverAmount,
		Status:            string(t.Status),
		MpesaReceipt:      t.MpesaReceipt,
		CheckoutRequestID: t.CheckoutRequestID,
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
