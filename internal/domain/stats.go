package domain

import "time"

// AdminStats is the platform-wide rollup of completed transactions.
// It is incremented exactly once per completed transaction.
type AdminStats struct {
	TotalTransactions int64
	TotalRevenue      float64
	TotalPlatformFees float64
	ActiveDrivers     int64
	UpdatedAt         time.Time
}
