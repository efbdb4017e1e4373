package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopay/internal/mpesa"
	"gopay/internal/repository"
	"gopay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrDriverNotFound),
		errors.Is(err, service.ErrUnknownTransaction):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTransactionID),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidDriverDetails),
		errors.Is(err, service.ErrNotCorrelated):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDriverAlreadyRegistered),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPushInProgress),
		errors.Is(err, repository.ErrAlreadyCorrelated):
		return http.StatusConflict

	// Gateway refused the request as sent
	case errors.Is(err, mpesa.ErrGatewayRejected):
		return http.StatusUnprocessableEntity

	// Gateway unreachable - retryable
	case errors.Is(err, mpesa.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
