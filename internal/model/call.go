package model

import "time"

// ScheduledCall may reference a milestone; the reference is nulled when the
// milestone is deleted. ReminderSent is the dedup flag for the 24h reminder.
type ScheduledCall struct {
	ID           int        `json:"id"`
	ChurchID     int        `json:"church_id"`
	MilestoneID  *int       `json:"milestone_id,omitempty"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	Completed    bool       `json:"completed"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// CallWithChurch is a scheduled call joined with the recipient fields the
// reminder scheduler needs.
type CallWithChurch struct {
	Call        ScheduledCall `json:"call"`
	ChurchName  string        `json:"church_name"`
	ChurchEmail string        `json:"church_email"`
}
