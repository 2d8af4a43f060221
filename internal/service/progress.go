package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"partnerhub/internal/model"
)

type progressStore interface {
	GetByChurchAndMilestone(ctx context.Context, churchID, milestoneID int) (*model.Progress, error)
	Upsert(ctx context.Context, p *model.Progress) error
}

type milestoneLookup interface {
	GetByID(ctx context.Context, id int) (*model.ChurchMilestone, error)
}

// ProgressService records per-church completion state for milestones. Rows are
// created lazily on first mutation.
type ProgressService struct {
	progress   progressStore
	milestones milestoneLookup
	groups     groupLookup
	audit      auditRecorder
	logger     *zap.Logger
	now        func() time.Time
}

func NewProgressService(
	progress progressStore,
	milestones milestoneLookup,
	groups groupLookup,
	audit auditRecorder,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		progress:   progress,
		milestones: milestones,
		groups:     groups,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

type SetProgressInput struct {
	Completed  *bool      `json:"completed,omitempty"`
	TargetDate *time.Time `json:"target_date,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// SetProgress upserts the (church, milestone) progress row. Omitted fields are
// left untouched. CompletedAt is set only on a false→true flip and cleared on
// true→false.
func (s *ProgressService) SetProgress(ctx context.Context, caller Caller, churchID, milestoneID int, in SetProgressInput) (*model.Progress, error) {
	if err := authorizeChurchAccess(ctx, s.groups, caller, churchID); err != nil {
		return nil, err
	}

	m, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: milestone %d", ErrNotFound, milestoneID)
		}
		return nil, fmt.Errorf("failed to load milestone %d: %w", milestoneID, err)
	}
	if m.ChurchID != churchID {
		return nil, fmt.Errorf("%w: milestone belongs to another church", ErrForbidden)
	}

	p, err := s.progress.GetByChurchAndMilestone(ctx, churchID, milestoneID)
	if err != nil {
		if !isNoRows(err) {
			return nil, fmt.Errorf("failed to load progress: %w", err)
		}
		p = &model.Progress{ChurchID: churchID, MilestoneID: milestoneID}
	}

	toggled := false
	dateChanged := false
	notesChanged := false
	wasCompleted := p.Completed

	if in.Completed != nil && *in.Completed != p.Completed {
		toggled = true
		p.Completed = *in.Completed
		if p.Completed {
			now := s.now()
			p.CompletedAt = &now
		} else {
			p.CompletedAt = nil
		}
	}
	if in.TargetDate != nil {
		dateChanged = p.TargetDate == nil || !p.TargetDate.Equal(*in.TargetDate)
		p.TargetDate = in.TargetDate
	}
	if in.Notes != nil && *in.Notes != p.Notes {
		notesChanged = true
		p.Notes = *in.Notes
	}

	if !toggled && !dateChanged && !notesChanged {
		return p, nil
	}

	if err := s.progress.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	if toggled {
		s.audit.Record(ctx, caller, model.AuditMilestoneToggle, "milestone", milestoneID,
			map[string]bool{"completed": wasCompleted},
			map[string]bool{"completed": p.Completed},
			"completion toggled",
		)
	}
	if dateChanged {
		s.audit.Record(ctx, caller, model.AuditDateUpdate, "milestone", milestoneID,
			nil,
			map[string]any{"target_date": p.TargetDate},
			"target date updated",
		)
	}
	if notesChanged {
		s.audit.Record(ctx, caller, model.AuditNotesUpdate, "milestone", milestoneID,
			nil,
			map[string]string{"notes": p.Notes},
			"notes updated",
		)
	}

	s.logger.Info("Progress updated",
		zap.Int("church_id", churchID),
		zap.Int("milestone_id", milestoneID),
		zap.Bool("completed", p.Completed),
	)
	return p, nil
}
