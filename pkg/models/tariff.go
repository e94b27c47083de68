package models

import "time"

// Tariff is an admin-managed price table row. Fees are in cents and
// DriverShare is the percentage of the price paid to the driver.
type Tariff struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	VehicleType string    `json:"vehicle_type"`
	BaseFee     int64     `json:"base_fee"`
	PerKmFee    int64     `json:"per_km_fee"`
	DriverShare int       `json:"driver_share"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
