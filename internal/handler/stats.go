package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopay/internal/service"
)

// StatsHandler handles HTTP requests for the admin rollup.
type StatsHandler struct {
	statsService   *service.StatsService
	paymentService *service.PaymentService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService, paymentService *service.PaymentService) *StatsHandler {
	return &StatsHandler{
		statsService:   statsService,
		paymentService: paymentService,
	}
}

// StatsResponse is the HTTP response for admin stats.
type StatsResponse struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalPlatformFees float64 `json:"total_platform_fees"`
	ActiveDrivers     int64   `json:"active_drivers"`
}

// GetStats handles GET /v1/admin/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		TotalRevenue:      stats.TotalRevenue,
		TotalPlatformFees: stats.TotalPlatformFees,
		ActiveDrivers:     stats.ActiveDrivers,
	})
}

// GetTransactions handles GET /v1/admin/transactions
func (h *StatsHandler) GetTransactions(c *gin.Context) {
	txns, err := h.paymentService.ListAllTransactions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp = append(resp, toTransactionResponse(t))
	}
	respondJSON(c, http.StatusOK, resp)
}
