package mpesa

import "errors"

var (
	// ErrGatewayUnavailable is returned when the gateway cannot be reached
	// or answers with a server error. The push outcome is unknown.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected is returned when the gateway refuses the request.
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)
