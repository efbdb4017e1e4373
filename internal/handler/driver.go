package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopay/internal/domain"
	"gopay/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService  *service.DriverService
	paymentService *service.PaymentService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, paymentService *service.PaymentService) *DriverHandler {
	return &DriverHandler{
		driverService:  driverService,
		paymentService: paymentService,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	VehicleType   string  `json:"vehicle_type"`
	VehicleNumber string  `json:"vehicle_number"`
	PaymentURL    string  `json:"payment_url"`
	Balance       float64 `json:"balance"`
	TotalEarnings float64 `json:"total_earnings"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		VehicleType:   domain.VehicleType(req.VehicleType),
		VehicleNumber: req.VehicleNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		resp = append(resp, toDriverResponse(d))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Transactions handles GET /v1/drivers/:id/transactions
func (h *DriverHandler) Transactions(c *gin.Context) {
	txns, err := h.paymentService.ListDriverTransactions(c.Request.Context(), c.Param("id"))
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

// PayPage handles GET /pay/:id, the data behind a scanned QR code.
func (h *DriverHandler) PayPage(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"driver_id":      driver.ID,
		"name":           driver.Name,
		"vehicle_type":   string(driver.VehicleType),
		"vehicle_number": driver.VehicleNumber,
	})
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	resp := DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Email:         d.Email,
		VehicleType:   string(d.VehicleType),
		VehicleNumber: d.VehicleNumber,
		PaymentURL:    d.PaymentURL,
		Balance:       d.Balance,
		TotalEarnings: d.TotalEarnings,
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
