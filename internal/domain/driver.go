package domain

import "time"

// VehicleType represents the kind of vehicle a driver operates.
type VehicleType string

const (
	VehicleTypeBoda VehicleType = "boda"
	VehicleTypeTaxi VehicleType = "taxi"
	VehicleTypeUber VehicleType = "uber"
	VehicleTypeBolt VehicleType = "bolt"
)

// Driver represents a registered driver who receives passenger payments.
// Balance and TotalEarnings only grow when a transaction completes.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	Email         string
	VehicleType   VehicleType
	VehicleNumber string
	PaymentURL    string
	Balance       float64
	TotalEarnings float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
