package models

import "time"

const (
	VehicleMoto  = "moto"
	VehicleCarro = "carro"
	VehicleVan   = "van"
)

type DriverVehicle struct {
	ProfileID   int64     `json:"profile_id"`
	VehicleType string    `json:"vehicle_type"`
	Plate       string    `json:"plate"`
	Model       string    `json:"model"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DriverBalance struct {
	Earned    int64 `json:"earned"`
	Withdrawn int64 `json:"withdrawn"`
	Pending   int64 `json:"pending"`
	Available int64 `json:"available"`
}

type LeaderboardEntry struct {
	ProfileID           int64   `json:"profile_id"`
	FullName            string  `json:"full_name"`
	CompletedDeliveries int     `json:"completed_deliveries"`
	AvgRating           float64 `json:"avg_rating"`
	RankTier            string  `json:"rank_tier"`
}
