package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"partnerhub/internal/model"
)

type milestoneStore interface {
	Create(ctx context.Context, m *model.ChurchMilestone) error
	GetByID(ctx context.Context, id int) (*model.ChurchMilestone, error)
	ListBucket(ctx context.Context, churchID, phaseID int) ([]model.ChurchMilestone, error)
	UpdateFields(ctx context.Context, m *model.ChurchMilestone) error
	SwapDisplayOrder(ctx context.Context, aID, aOrder, bID, bOrder int) error
	Delete(ctx context.Context, id int) error
}

type progressDeleter interface {
	DeleteByMilestone(ctx context.Context, milestoneID int) (int64, error)
}

type attachmentDeleter interface {
	DeleteByMilestone(ctx context.Context, milestoneID int) (int64, error)
}

type callRefClearer interface {
	ClearMilestoneRefs(ctx context.Context, milestoneID int) (int64, error)
}

// OrderingService keeps each (church, phase) bucket of milestones in a total
// order and supports single-step reordering.
type OrderingService struct {
	milestones  milestoneStore
	progress    progressDeleter
	attachments attachmentDeleter
	calls       callRefClearer
	groups      groupLookup
	audit       auditRecorder
	logger      *zap.Logger
}

func NewOrderingService(
	milestones milestoneStore,
	progress progressDeleter,
	attachments attachmentDeleter,
	calls callRefClearer,
	groups groupLookup,
	audit auditRecorder,
	logger *zap.Logger,
) *OrderingService {
	return &OrderingService{
		milestones:  milestones,
		progress:    progress,
		attachments: attachments,
		calls:       calls,
		groups:      groups,
		audit:       audit,
		logger:      logger,
	}
}

type CreateMilestoneInput struct {
	PhaseID        int    `json:"phase_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	IsKeyMilestone bool   `json:"is_key_milestone"`
}

// CreateMilestone appends a custom milestone at the end of its bucket.
func (s *OrderingService) CreateMilestone(ctx context.Context, caller Caller, churchID int, in CreateMilestoneInput) (*model.ChurchMilestone, error) {
	if err := authorizeChurchAccess(ctx, s.groups, caller, churchID); err != nil {
		return nil, err
	}
	if in.PhaseID == 0 || in.Title == "" {
		return nil, fmt.Errorf("%w: phase_id and title are required", ErrValidation)
	}

	m := &model.ChurchMilestone{
		ChurchID:       churchID,
		PhaseID:        in.PhaseID,
		Title:          in.Title,
		Description:    in.Description,
		IsKeyMilestone: in.IsKeyMilestone,
		IsCustom:       true,
	}
	if err := s.milestones.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	s.logger.Info("Milestone created",
		zap.Int("church_id", churchID),
		zap.Int("phase_id", in.PhaseID),
		zap.Int("milestone_id", m.ID),
		zap.Int("display_order", m.DisplayOrder),
	)
	return m, nil
}

// MoveUp swaps the milestone with its predecessor in the bucket.
func (s *OrderingService) MoveUp(ctx context.Context, caller Caller, churchID, milestoneID int) error {
	return s.move(ctx, caller, churchID, milestoneID, -1)
}

// MoveDown swaps the milestone with its successor in the bucket.
func (s *OrderingService) MoveDown(ctx context.Context, caller Caller, churchID, milestoneID int) error {
	return s.move(ctx, caller, churchID, milestoneID, +1)
}

func (s *OrderingService) move(ctx context.Context, caller Caller, churchID, milestoneID, delta int) error {
	if err := authorizeChurchAccess(ctx, s.groups, caller, churchID); err != nil {
		return err
	}

	m, err := s.loadOwned(ctx, churchID, milestoneID)
	if err != nil {
		return err
	}

	bucket, err := s.milestones.ListBucket(ctx, churchID, m.PhaseID)
	if err != nil {
		return fmt.Errorf("failed to load milestone bucket: %w", err)
	}
	if len(bucket) < 2 {
		return fmt.Errorf("%w: not enough milestones to reorder", ErrConflict)
	}

	index := -1
	for i := range bucket {
		if bucket[i].ID == milestoneID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: milestone %d", ErrNotFound, milestoneID)
	}

	target := index + delta
	if target < 0 || target >= len(bucket) {
		return fmt.Errorf("%w: milestone already at boundary", ErrConflict)
	}

	a, b := bucket[index], bucket[target]
	if err := s.milestones.SwapDisplayOrder(ctx, a.ID, a.DisplayOrder, b.ID, b.DisplayOrder); err != nil {
		return fmt.Errorf("failed to swap display order: %w", err)
	}

	s.logger.Info("Milestone reordered",
		zap.Int("church_id", churchID),
		zap.Int("milestone_id", a.ID),
		zap.Int("swapped_with", b.ID),
	)
	return nil
}

type EditMilestoneInput struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	IsKeyMilestone *bool   `json:"is_key_milestone,omitempty"`
}

// EditMilestone applies a partial field update, independent from reorder and
// progress mutation, and records the changed fields only.
func (s *OrderingService) EditMilestone(ctx context.Context, caller Caller, churchID, milestoneID int, in EditMilestoneInput) (*model.ChurchMilestone, error) {
	if err := authorizeChurchAccess(ctx, s.groups, caller, churchID); err != nil {
		return nil, err
	}

	m, err := s.loadOwned(ctx, churchID, milestoneID)
	if err != nil {
		return nil, err
	}

	before := map[string]any{}
	after := map[string]any{}

	if in.Title != nil && *in.Title != m.Title {
		before["title"], after["title"] = m.Title, *in.Title
		m.Title = *in.Title
	}
	if in.Description != nil && *in.Description != m.Description {
		before["description"], after["description"] = m.Description, *in.Description
		m.Description = *in.Description
	}
	if in.IsKeyMilestone != nil && *in.IsKeyMilestone != m.IsKeyMilestone {
		before["is_key_milestone"], after["is_key_milestone"] = m.IsKeyMilestone, *in.IsKeyMilestone
		m.IsKeyMilestone = *in.IsKeyMilestone
	}

	if len(after) == 0 {
		return m, nil
	}

	if err := s.milestones.UpdateFields(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone %d: %w", milestoneID, err)
	}

	s.audit.Record(ctx, caller, model.AuditMilestoneEdit, "milestone", m.ID, before, after, "milestone edited")
	return m, nil
}

// DeleteMilestone cascades in fixed order: progress rows, attachments, then
// scheduled-call references, then the milestone itself. A failure of the final
// delete leaves an orphaned milestone with no progress or attachments; the
// earlier steps are not rolled back.
func (s *OrderingService) DeleteMilestone(ctx context.Context, caller Caller, churchID, milestoneID int) error {
	if err := authorizeChurchAccess(ctx, s.groups, caller, churchID); err != nil {
		return err
	}

	m, err := s.loadOwned(ctx, churchID, milestoneID)
	if err != nil {
		return err
	}

	progressRows, err := s.progress.DeleteByMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to delete progress rows: %w", err)
	}
	attachmentRows, err := s.attachments.DeleteByMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	callRows, err := s.calls.ClearMilestoneRefs(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to clear call references: %w", err)
	}

	if err := s.milestones.Delete(ctx, milestoneID); err != nil {
		s.logger.Error("Milestone delete failed after cascades; orphan left behind",
			zap.Int("milestone_id", milestoneID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete milestone %d: %w", milestoneID, err)
	}

	s.audit.Record(ctx, caller, model.AuditMilestoneDelete, "milestone", m.ID, m, nil, "milestone deleted")
	s.logger.Info("Milestone deleted",
		zap.Int("church_id", churchID),
		zap.Int("milestone_id", milestoneID),
		zap.Int64("progress_rows", progressRows),
		zap.Int64("attachment_rows", attachmentRows),
		zap.Int64("calls_unlinked", callRows),
	)
	return nil
}

// loadOwned fetches the milestone and checks it belongs to the church.
func (s *OrderingService) loadOwned(ctx context.Context, churchID, milestoneID int) (*model.ChurchMilestone, error) {
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
	return m, nil
}
