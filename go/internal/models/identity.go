package models

import "time"

// Role distinguishes ordinary users from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated user's profile and balance as asserted by the
// server. The client never derives Coins locally; it only displays values the
// server returned, either from a REST response or a push event.
type Identity struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	Coins           int        `json:"coins"`
	Badges          []string   `json:"badges"`
	LastDailyReward *time.Time `json:"last_daily_reward"`
	CompletedTasks  []string   `json:"completed_tasks"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsAdmin reports whether the identity may call the admin API surface.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
