package models

import "time"

type Delivery struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"order_id"`
	DriverID      int64      `json:"driver_id"`
	DriverEarning int64      `json:"driver_earning"`
	Status        string     `json:"status"`
	ProofURL      string     `json:"proof_url,omitempty"`
	AcceptedAt    time.Time  `json:"accepted_at"`
	PickedUpAt    *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}
