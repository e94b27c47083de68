package models

import "time"

const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderPickedUp  = "picked_up"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID             int64     `json:"id"`
	ClientID       int64     `json:"client_id"`
	TariffID       int64     `json:"tariff_id"`
	PickupAddress  string    `json:"pickup_address"`
	PickupCEP      string    `json:"pickup_cep"`
	DropoffAddress string    `json:"dropoff_address"`
	DropoffCEP     string    `json:"dropoff_cep"`
	Description    string    `json:"description"`
	DistanceKm     float64   `json:"distance_km"`
	Price          int64     `json:"price"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	DriverID *int64 `json:"driver_id,omitempty"`
}

// IsFinal reports whether the order can no longer change status.
func (o *Order) IsFinal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}
