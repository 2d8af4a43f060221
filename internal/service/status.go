package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"partnerhub/internal/model"
	"partnerhub/internal/notifier"
	"partnerhub/pkg/metrics"
)

type churchStore interface {
	GetByID(ctx context.Context, id int) (*model.Church, error)
	UpdateLifecycle(ctx context.Context, ch *model.Church) error
}

type auditRecorder interface {
	Record(ctx context.Context, caller Caller, action, entityKind string, entityID int, before, after any, message string)
}

// StatusService owns the church status machine. Writes are permissive: any
// known status may be set directly. Side effects key off the old/new pair, so
// a repeated write is a no-op.
type StatusService struct {
	churches churchStore
	audit    auditRecorder
	notifier notifier.Notifier
	logger   *zap.Logger
}

func NewStatusService(churches churchStore, audit auditRecorder, n notifier.Notifier, logger *zap.Logger) *StatusService {
	return &StatusService{
		churches: churches,
		audit:    audit,
		notifier: n,
		logger:   logger,
	}
}

type TransitionInput struct {
	Status    *string  `json:"status,omitempty"`
	Phase     *int     `json:"phase,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	TierName  *string  `json:"tier_name,omitempty"`
	SendEmail *bool    `json:"send_email,omitempty"` // nil means true
}

func (in TransitionInput) sendEmail() bool {
	return in.SendEmail == nil || *in.SendEmail
}

// Transition applies the requested changes to one church. Notifier failures
// are logged and swallowed; they never fail the transition.
func (s *StatusService) Transition(ctx context.Context, caller Caller, churchID int, in TransitionInput) (*model.Church, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if in.Status != nil && !model.IsValidStatus(*in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
	}

	ch, err := s.churches.GetByID(ctx, churchID)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: church %d", ErrNotFound, churchID)
		}
		return nil, fmt.Errorf("failed to load church %d: %w", churchID, err)
	}

	oldStatus := ch.Status

	if in.Status != nil {
		ch.Status = *in.Status
	}
	if in.Phase != nil {
		ch.CurrentPhase = *in.Phase
	}
	if in.Aliases != nil {
		ch.Aliases = in.Aliases
	}
	if in.TierName != nil {
		ch.SelectedTier = in.TierName
	}

	if err := s.churches.UpdateLifecycle(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to update church %d: %w", churchID, err)
	}

	if ch.Status != oldStatus {
		s.audit.Record(ctx, caller, model.AuditStatusChange, "church", ch.ID,
			map[string]string{"status": oldStatus},
			map[string]string{"status": ch.Status},
			fmt.Sprintf("status %s -> %s", oldStatus, ch.Status),
		)
		metrics.StatusTransitionCount.WithLabelValues(ch.Status).Inc()

		if in.sendEmail() {
			s.notifyEdge(ctx, ch, oldStatus, in)
		}
	}

	return ch, nil
}

// notifyEdge fires the notification a recognized edge carries, if any.
func (s *StatusService) notifyEdge(ctx context.Context, ch *model.Church, oldStatus string, in TransitionInput) {
	var msg *notifier.Message

	switch {
	case oldStatus != model.StatusProposalSent && ch.Status == model.StatusProposalSent:
		msg = &notifier.Message{
			Kind:      notifier.KindProposalReady,
			Recipient: ch.Email,
			Params:    notifier.ProposalReadyParams{ChurchName: ch.Name},
		}
	case oldStatus != model.StatusAwaitingStrategy && ch.Status == model.StatusAwaitingStrategy:
		params := notifier.AgreementConfirmedParams{ChurchName: ch.Name}
		if in.TierName != nil {
			params.TierName = *in.TierName
		}
		msg = &notifier.Message{
			Kind:      notifier.KindAgreementConfirmed,
			Recipient: ch.Email,
			Params:    params,
		}
	case oldStatus != model.StatusActive && ch.Status == model.StatusActive:
		msg = &notifier.Message{
			Kind:      notifier.KindDashboardAccess,
			Recipient: ch.Email,
			Params:    notifier.DashboardAccessParams{ChurchName: ch.Name},
		}
	}

	if msg == nil {
		return
	}

	if err := s.notifier.Send(ctx, *msg); err != nil {
		metrics.RecordNotificationSend(string(msg.Kind), false)
		s.logger.Error("Failed to send status notification",
			zap.Int("church_id", ch.ID),
			zap.String("kind", string(msg.Kind)),
			zap.Error(err),
		)
		return
	}
	metrics.RecordNotificationSend(string(msg.Kind), true)
}

// BulkItemResult reports one church of a bulk transition.
type BulkItemResult struct {
	ChurchID int    `json:"church_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// BulkResult is the per-item tally of a bulk transition.
type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// BulkTransition applies the same input to each church. One failure never
// aborts the batch.
func (s *StatusService) BulkTransition(ctx context.Context, caller Caller, churchIDs []int, in TransitionInput) (*BulkResult, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if len(churchIDs) == 0 {
		return nil, fmt.Errorf("%w: no church ids", ErrValidation)
	}

	result := &BulkResult{}
	for _, id := range churchIDs {
		if _, err := s.Transition(ctx, caller, id, in); err != nil {
			result.Failed++
			result.Items = append(result.Items, BulkItemResult{ChurchID: id, Error: err.Error()})
			s.logger.Warn("Bulk transition item failed",
				zap.Int("church_id", id),
				zap.Error(err),
			)
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, BulkItemResult{ChurchID: id, OK: true})
	}

	s.logger.Info("Bulk transition completed",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
