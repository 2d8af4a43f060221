// Package notifier routes lifecycle events to outbound email jobs. Template
// composition happens downstream; this package only carries the kind, the
// recipient, and the typed parameters each kind needs.
package notifier

import "context"

type Kind string

const (
	KindProposalReady         Kind = "proposal_ready"
	KindAgreementConfirmed    Kind = "agreement_confirmed"
	KindDashboardAccess       Kind = "dashboard_access"
	KindCoLeaderInvite        Kind = "co_leader_invite"
	KindCoLeaderSignupInvite  Kind = "co_leader_signup_invite"
	KindBookDiscoveryReminder Kind = "book_discovery_reminder"
	KindCallReminder24h       Kind = "call_reminder_24h"
	KindCallMissed            Kind = "call_missed"
	KindProposalExpiring      Kind = "proposal_expiring"
	KindInactiveReminder      Kind = "inactive_reminder"
)

// Per-kind parameter payloads.

type ProposalReadyParams struct {
	ChurchName string `json:"church_name"`
}

type AgreementConfirmedParams struct {
	ChurchName string `json:"church_name"`
	TierName   string `json:"tier_name,omitempty"`
}

type DashboardAccessParams struct {
	ChurchName string `json:"church_name"`
}

type CoLeaderInviteParams struct {
	GroupID     int    `json:"group_id"`
	InviterName string `json:"inviter_name"`
	Token       string `json:"token"`
}

type CoLeaderSignupInviteParams struct {
	GroupID     int    `json:"group_id"`
	InviterName string `json:"inviter_name"`
	Token       string `json:"token"`
	SignupToken string `json:"signup_token"`
}

type ReminderParams struct {
	ChurchName      string `json:"church_name"`
	ScheduledCallID int    `json:"scheduled_call_id,omitempty"`
}

// Message is one outbound notification.
type Message struct {
	Kind      Kind   `json:"kind"`
	Recipient string `json:"recipient"`
	Params    any    `json:"params"`
}

// Notifier sends a message. Errors are non-fatal to callers; engines log and
// continue.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
