package model

import "time"

// Leader is a unified identity. An invited-by-email leader starts unactivated:
// no password hash, a signup token, IsActive false until activation.
type Leader struct {
	ID                   int        `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	PasswordHash         string     `json:"-"`
	IsAdmin              bool       `json:"is_admin"`
	IsActive             bool       `json:"is_active"`
	ActivatedAt          *time.Time `json:"activated_at,omitempty"`
	SignupToken          *string    `json:"-"`
	SignupTokenExpiresAt *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Group ties a church to its leadership. At most one co-leader and at most one
// pending co-leader at a time, enforced by the invitation engine.
type Group struct {
	ID                int       `json:"id"`
	ChurchID          int       `json:"church_id"`
	LeaderID          int       `json:"leader_id"`
	CoLeaderID        *int      `json:"co_leader_id,omitempty"`
	PendingCoLeaderID *int      `json:"pending_co_leader_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
