// Package ranking maps a driver's completed deliveries and average rating to
// a gamification tier.
package ranking

import "strings"

type Tier int

const (
	Bronze Tier = iota
	Prata
	Ouro
	Diamante
)

var tierNames = map[Tier]string{
	Bronze:   "bronze",
	Prata:    "prata",
	Ouro:     "ouro",
	Diamante: "diamante",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "desconhecido"
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTier is case-insensitive. Unknown names return false.
func ParseTier(s string) (Tier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range tierNames {
		if name == s {
			return t, true
		}
	}
	return Bronze, false
}

type Threshold struct {
	Tier          Tier    `json:"tier"`
	MinDeliveries int     `json:"min_deliveries"`
	MinRating     float64 `json:"min_rating"`
}

// Thresholds are ordered from lowest to highest tier.
var Thresholds = []Threshold{
	{Tier: Bronze, MinDeliveries: 0, MinRating: 0},
	{Tier: Prata, MinDeliveries: 50, MinRating: 4.0},
	{Tier: Ouro, MinDeliveries: 200, MinRating: 4.5},
	{Tier: Diamante, MinDeliveries: 500, MinRating: 4.8},
}

type Standing struct {
	Tier             Tier       `json:"tier"`
	Completed        int        `json:"completed"`
	AvgRating        float64    `json:"avg_rating"`
	Next             *Threshold `json:"next,omitempty"`
	DeliveriesToNext int        `json:"deliveries_to_next"`
	// Progress is the share of the next tier's delivery requirement already met.
	Progress float64 `json:"progress"`
}

func (th Threshold) met(completed int, avgRating float64) bool {
	return completed >= th.MinDeliveries && avgRating >= th.MinRating
}

// TierFor returns the highest tier whose delivery and rating thresholds are
// both met.
func TierFor(completed int, avgRating float64) Tier {
	if completed < 0 {
		completed = 0
	}
	tier := Bronze
	for _, th := range Thresholds {
		if th.met(completed, avgRating) {
			tier = th.Tier
		}
	}
	return tier
}

func Compute(completed int, avgRating float64) Standing {
	if completed < 0 {
		completed = 0
	}
	tier := TierFor(completed, avgRating)
	st := Standing{Tier: tier, Completed: completed, AvgRating: avgRating, Progress: 1}

	idx := int(tier) + 1
	if idx >= len(Thresholds) {
		return st
	}

	next := Thresholds[idx]
	st.Next = &next
	if completed < next.MinDeliveries {
		st.DeliveriesToNext = next.MinDeliveries - completed
	}

	prev := Thresholds[tier].MinDeliveries
	span := next.MinDeliveries - prev
	done := completed - prev
	switch {
	case span <= 0 || done >= span:
		st.Progress = 1
	case done <= 0:
		st.Progress = 0
	default:
		st.Progress = float64(done) / float64(span)
	}
	return st
}
