package model

import "time"

// ChurchMilestone is a church-scoped milestone inside one phase. DisplayOrder
// defines the ordering within the (church, phase) bucket; it is not unique in
// storage, ties break on ID.
type ChurchMilestone struct {
	ID             int       `json:"id"`
	ChurchID       int       `json:"church_id"`
	PhaseID        int       `json:"phase_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	IsKeyMilestone bool      `json:"is_key_milestone"`
	IsCustom       bool      `json:"is_custom"`
	DisplayOrder   int       `json:"display_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Progress is created lazily on first mutation, one row per (church, milestone).
type Progress struct {
	ID          int        `json:"id"`
	ChurchID    int        `json:"church_id"`
	MilestoneID int        `json:"milestone_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Notes       string     `json:"notes"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Attachment references an opaque blob; the bytes live elsewhere.
type Attachment struct {
	ID          int       `json:"id"`
	ChurchID    int       `json:"church_id"`
	MilestoneID int       `json:"milestone_id"`
	FileName    string    `json:"file_name"`
	BlobRef     string    `json:"blob_ref"`
	CreatedAt   time.Time `json:"created_at"`
}
