package models

import "time"

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
	WithdrawalPaid     = "paid"
)

type Withdrawal struct {
	ID         int64      `json:"id"`
	DriverID   int64      `json:"driver_id"`
	Amount     int64      `json:"amount"`
	PixKeyType string     `json:"pix_key_type"`
	PixKey     string     `json:"pix_key"`
	Status     string     `json:"status"`
	ReviewedBy *int64     `json:"reviewed_by,omitempty"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}
