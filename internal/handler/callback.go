package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopay/internal/service"
)

// CallbackHandler handles the gateway's asynchronous result notifications.
type CallbackHandler struct {
	callbackService *service.CallbackService
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(callbackService *service.CallbackService) *CallbackHandler {
	return &CallbackHandler{callbackService: callbackService}
}

// MpesaCallbackRequest is the HTTP request body for the M-Pesa callback.
type MpesaCallbackRequest struct {
	ResultCode         int    `json:"result_code"`
	ResultDesc         string `json:"result_desc"`
	MerchantRequestID  string `json:"merchant_request_id"`
	CheckoutRequestID  string `json:"checkout_request_id"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number"`
}

// Mpesa handles POST /v1/callbacks/mpesa. Business no-ops (unknown or
// already-resolved transactions) are acknowledged with 200 so the gateway
// stops retrying; only store failures return an error status.
func (h *CallbackHandler) Mpesa(c *gin.Context) {
	var req MpesaCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.callbackService.Handle(c.Request.Context(), service.Callback{
		ResultCode:        req.ResultCode,
		ResultDesc:        req.ResultDesc,
		MerchantRequestID: req.MerchantRequestID,
		CheckoutRequestID: req.CheckoutRequestID,
		MpesaReceipt:      req.MpesaReceiptNumber,
	})
	if err != nil {
		// Retryable: the provider will redeliver, and ingestion is idempotent.
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "temporarily unable to process callback"})
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
