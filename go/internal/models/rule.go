package models

import "time"

// RewardRule configures how a reward source pays out. Managed through the
// admin API surface only.
type RewardRule struct {
	ID            string    `json:"id"`
	Key           string    `json:"key"`
	Description   string    `json:"description"`
	Points        int       `json:"points"`
	Penalty       bool      `json:"penalty"`
	Active        bool      `json:"active"`
	CooldownHours *int      `json:"cooldown_hours,omitempty"`
	DailyCap      *int      `json:"daily_cap,omitempty"`
	PerUserCap    *int      `json:"per_user_cap,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
