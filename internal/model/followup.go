package model

import "time"

// FollowUpEmailRecord marks a reminder as sent. A unique index on
// (church_id, email_type, scheduled_call_id) makes the insert the atomic
// at-most-once guard; there is no separate existence check.
type FollowUpEmailRecord struct {
	ID              int       `json:"id"`
	ChurchID        int       `json:"church_id"`
	EmailType       string    `json:"email_type"`
	ScheduledCallID *int      `json:"scheduled_call_id,omitempty"`
	SentAt          time.Time `json:"sent_at"`
}
