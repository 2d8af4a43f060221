package model

import "time"

// Church statuses form a closed set. Writes may target any known status;
// side effects are computed from the old/new pair, not from a fixed path.
const (
	StatusPendingAssessment = "pending_assessment"
	StatusAwaitingDiscovery = "awaiting_discovery"
	StatusProposalSent      = "proposal_sent"
	StatusAwaitingAgreement = "awaiting_agreement"
	StatusAwaitingStrategy  = "awaiting_strategy"
	StatusActive            = "active"
	StatusPaused            = "paused"
	StatusCompleted         = "completed"
	StatusDeclined          = "declined"
)

var validStatuses = map[string]bool{
	StatusPendingAssessment: true,
	StatusAwaitingDiscovery: true,
	StatusProposalSent:      true,
	StatusAwaitingAgreement: true,
	StatusAwaitingStrategy:  true,
	StatusActive:            true,
	StatusPaused:            true,
	StatusCompleted:         true,
	StatusDeclined:          true,
}

// IsValidStatus reports whether s is a known church status.
func IsValidStatus(s string) bool {
	return validStatuses[s]
}

type Church struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	CurrentPhase int       `json:"current_phase"`
	SelectedTier *string   `json:"selected_tier,omitempty"`
	Aliases      []string  `json:"aliases"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Phase is immutable reference data ordered by PhaseNumber.
type Phase struct {
	ID          int    `json:"id"`
	PhaseNumber int    `json:"phase_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
