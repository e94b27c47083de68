package models

import "time"

const (
	RoleClient    = "client"
	RoleDriver    = "driver"
	RoleWholesale = "wholesale"
	RoleAdmin     = "admin"
)

type Profile struct {
	ID                  int64     `json:"id"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	FullName            string    `json:"full_name"`
	Role                string    `json:"role"`
	Document            string    `json:"document"`
	Phone               string    `json:"phone"`
	CEP                 string    `json:"cep"`
	Approved            bool      `json:"approved"`
	Blocked             bool      `json:"blocked"`
	TelegramChatID      *int64    `json:"telegram_chat_id,omitempty"`
	TelegramLinkCode    string    `json:"-"`
	AvgRating           float64   `json:"avg_rating"`
	RatingCount         int       `json:"rating_count"`
	CompletedDeliveries int       `json:"completed_deliveries"`
	RankTier            string    `json:"rank_tier"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (p *Profile) IsDriver() bool { return p.Role == RoleDriver }

// CanWork reports whether a driver may take deliveries.
func (p *Profile) CanWork() bool {
	return p.Role == RoleDriver && p.Approved && !p.Blocked
}

type ProfileFilter struct {
	Role        string
	OnlyPending bool
	OnlyBlocked bool
}
