package models

import "time"

type Rating struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	DriverID  int64     `json:"driver_id"`
	ClientID  int64     `json:"client_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
