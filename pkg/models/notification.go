package models

import "time"

const (
	NotifyOrder      = "order"
	NotifyDelivery   = "delivery"
	NotifyWithdrawal = "withdrawal"
	NotifyAccount    = "account"
	NotifyRank       = "rank"
)

type Notification struct {
	ID        int64      `json:"id"`
	ProfileID int64      `json:"profile_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
