package models

type DashboardStats struct {
	ProfilesByRole     map[string]int `json:"profiles_by_role"`
	PendingDrivers     int            `json:"pending_drivers"`
	BlockedProfiles    int            `json:"blocked_profiles"`
	OrdersByStatus     map[string]int `json:"orders_by_status"`
	OrdersToday        int            `json:"orders_today"`
	PendingWithdrawals int            `json:"pending_withdrawals"`
	// CancelRate is the share of all orders that ended cancelled, from 0 to 1.
	CancelRate float64 `json:"cancel_rate"`
}
