package model

import "time"

const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationCancelled = "cancelled"
)

type CoLeaderInvitation struct {
	ID                int        `json:"id"`
	GroupID           int        `json:"group_id"`
	Token             string     `json:"-"`
	Status            string     `json:"status"`
	InvitedLeaderID   int        `json:"invited_leader_id"`
	InvitedByLeaderID int        `json:"invited_by_leader_id"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
