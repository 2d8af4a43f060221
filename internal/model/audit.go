package model

import (
	"encoding/json"
	"time"
)

// Audit action kinds.
const (
	AuditStatusChange    = "status_change"
	AuditMilestoneEdit   = "milestone_edit"
	AuditMilestoneDelete = "milestone_delete"
	AuditMilestoneToggle = "milestone_toggle"
	AuditDateUpdate      = "date_update"
	AuditNotesUpdate     = "notes_update"
)

// AuditLogEntry is append-only; entries are never mutated or deleted.
type AuditLogEntry struct {
	ID         int             `json:"id"`
	ActorID    int             `json:"actor_id"`
	ActorEmail string          `json:"actor_email"`
	Action     string          `json:"action"`
	EntityKind string          `json:"entity_kind"`
	EntityID   int             `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"created_at"`
}
