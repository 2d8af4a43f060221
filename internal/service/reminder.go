package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"partnerhub/internal/model"
	"partnerhub/internal/notifier"
	"partnerhub/pkg/metrics"
)

// Reminder categories. The names double as the dedup email_type values.
const (
	CategoryBookDiscovery    = "book_discovery_reminder"
	CategoryCallReminder24h  = "call_reminder_24h"
	CategoryCallMissed       = "call_missed"
	CategoryProposalExpiring = "proposal_expiring"
	CategoryInactiveReminder = "inactive_reminder"
)

const (
	bookDiscoveryAge   = 3 * 24 * time.Hour
	proposalStaleAge   = 7 * 24 * time.Hour
	inactiveStaleAge   = 14 * 24 * time.Hour
	reminderRunLockTTL = 2 * time.Minute
	reminderRunLock    = "reminder_run"
)

type reminderChurchStore interface {
	ListPendingAssessmentBefore(ctx context.Context, cutoff time.Time) ([]model.Church, error)
	ListProposalSentStaleSince(ctx context.Context, cutoff time.Time) ([]model.Church, error)
	ListActiveStaleSince(ctx context.Context, cutoff time.Time) ([]model.Church, error)
}

type reminderCallStore interface {
	ListReminderWindow(ctx context.Context, from, to time.Time) ([]model.CallWithChurch, error)
	ListMissedWindow(ctx context.Context, from, to time.Time) ([]model.CallWithChurch, error)
	MarkReminderSent(ctx context.Context, callID int) (bool, error)
	ClearReminderSent(ctx context.Context, callID int) error
}

type followUpStore interface {
	InsertIfAbsent(ctx context.Context, churchID int, emailType string, scheduledCallID *int) (bool, error)
	InsertOrRefresh(ctx context.Context, churchID int, emailType string, staleBefore time.Time) (bool, error)
	DeleteByKey(ctx context.Context, churchID int, emailType string, scheduledCallID *int) error
}

type runLocker interface {
	Acquire(ctx context.Context, name string) bool
	Release(ctx context.Context, name string)
}

// CategoryResult tallies one category of a run.
type CategoryResult struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// RunSummary is the scheduler's only output besides the emails themselves.
type RunSummary struct {
	Skipped    bool                       `json:"skipped"`
	StartedAt  time.Time                  `json:"started_at"`
	Categories map[string]*CategoryResult `json:"categories"`
	Errors     []string                   `json:"errors,omitempty"`
}

func newRunSummary(start time.Time) *RunSummary {
	return &RunSummary{
		StartedAt: start,
		Categories: map[string]*CategoryResult{
			CategoryBookDiscovery:    {},
			CategoryCallReminder24h:  {},
			CategoryCallMissed:       {},
			CategoryProposalExpiring: {},
			CategoryInactiveReminder: {},
		},
	}
}

// ReminderService scans for due notifications and dispatches each at most
// once. Every candidate claims its dedup key atomically before sending; only
// the invocation that wins the claim sends, so overlapping runs cannot
// double-notify. A failed send releases the claim and is retried on a later
// run.
type ReminderService struct {
	churches  reminderChurchStore
	calls     reminderCallStore
	followUps followUpStore
	lock      runLocker
	notifier  notifier.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewReminderService(
	churches reminderChurchStore,
	calls reminderCallStore,
	followUps followUpStore,
	lock runLocker,
	n notifier.Notifier,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		churches:  churches,
		calls:     calls,
		followUps: followUps,
		lock:      lock,
		notifier:  n,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one full scan across all five categories.
func (s *ReminderService) Run(ctx context.Context) *RunSummary {
	now := s.now()
	summary := newRunSummary(now)

	if s.lock != nil && !s.lock.Acquire(ctx, reminderRunLock) {
		summary.Skipped = true
		s.logger.Info("Reminder run skipped, another invocation holds the lock")
		return summary
	}
	if s.lock != nil {
		defer s.lock.Release(ctx, reminderRunLock)
	}
	defer metrics.ObserveReminderRun(now)

	s.runBookDiscovery(ctx, now, summary)
	s.runCallReminder24h(ctx, now, summary)
	s.runCallMissed(ctx, now, summary)
	s.runProposalExpiring(ctx, now, summary)
	s.runInactiveReminder(ctx, now, summary)

	s.logger.Info("Reminder run completed",
		zap.Int("book_discovery_sent", summary.Categories[CategoryBookDiscovery].Sent),
		zap.Int("call_reminder_sent", summary.Categories[CategoryCallReminder24h].Sent),
		zap.Int("call_missed_sent", summary.Categories[CategoryCallMissed].Sent),
		zap.Int("proposal_expiring_sent", summary.Categories[CategoryProposalExpiring].Sent),
		zap.Int("inactive_sent", summary.Categories[CategoryInactiveReminder].Sent),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary
}

func (s *ReminderService) runBookDiscovery(ctx context.Context, now time.Time, summary *RunSummary) {
	res := summary.Categories[CategoryBookDiscovery]

	churches, err := s.churches.ListPendingAssessmentBefore(ctx, now.Add(-bookDiscoveryAge))
	if err != nil {
		s.scanFailed(summary, CategoryBookDiscovery, err)
		return
	}

	for _, ch := range churches {
		res.Candidates++
		metrics.ReminderCandidateCount.WithLabelValues(CategoryBookDiscovery).Inc()

		claimed, err := s.followUps.InsertIfAbsent(ctx, ch.ID, CategoryBookDiscovery, nil)
		if err != nil {
			s.itemFailed(summary, res, CategoryBookDiscovery, ch.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.sendReminder(ctx, notifier.KindBookDiscoveryReminder, ch.Email, notifier.ReminderParams{ChurchName: ch.Name}); err != nil {
			s.itemFailed(summary, res, CategoryBookDiscovery, ch.ID, err)
			if delErr := s.followUps.DeleteByKey(ctx, ch.ID, CategoryBookDiscovery, nil); delErr != nil {
				s.logger.Error("Failed to release dedup record after send failure",
					zap.Int("church_id", ch.ID),
					zap.Error(delErr),
				)
			}
			continue
		}
		res.Sent++
		metrics.ReminderSentCount.WithLabelValues(CategoryBookDiscovery).Inc()
	}
}

func (s *ReminderService) runCallReminder24h(ctx context.Context, now time.Time, summary *RunSummary) {
	res := summary.Categories[CategoryCallReminder24h]

	calls, err := s.calls.ListReminderWindow(ctx, now.Add(23*time.Hour), now.Add(25*time.Hour))
	if err != nil {
		s.scanFailed(summary, CategoryCallReminder24h, err)
		return
	}

	for _, c := range calls {
		res.Candidates++
		metrics.ReminderCandidateCount.WithLabelValues(CategoryCallReminder24h).Inc()

		claimed, err := s.calls.MarkReminderSent(ctx, c.Call.ID)
		if err != nil {
			s.itemFailed(summary, res, CategoryCallReminder24h, c.Call.ChurchID, err)
			continue
		}
		if !claimed {
			continue
		}

		params := notifier.ReminderParams{ChurchName: c.ChurchName, ScheduledCallID: c.Call.ID}
		if err := s.sendReminder(ctx, notifier.KindCallReminder24h, c.ChurchEmail, params); err != nil {
			s.itemFailed(summary, res, CategoryCallReminder24h, c.Call.ChurchID, err)
			if clearErr := s.calls.ClearReminderSent(ctx, c.Call.ID); clearErr != nil {
				s.logger.Error("Failed to release reminder flag after send failure",
					zap.Int("call_id", c.Call.ID),
					zap.Error(clearErr),
				)
			}
			continue
		}
		res.Sent++
		metrics.ReminderSentCount.WithLabelValues(CategoryCallReminder24h).Inc()
	}
}

func (s *ReminderService) runCallMissed(ctx context.Context, now time.Time, summary *RunSummary) {
	res := summary.Categories[CategoryCallMissed]

	calls, err := s.calls.ListMissedWindow(ctx, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		s.scanFailed(summary, CategoryCallMissed, err)
		return
	}

	for _, c := range calls {
		res.Candidates++
		metrics.ReminderCandidateCount.WithLabelValues(CategoryCallMissed).Inc()

		callID := c.Call.ID
		claimed, err := s.followUps.InsertIfAbsent(ctx, c.Call.ChurchID, CategoryCallMissed, &callID)
		if err != nil {
			s.itemFailed(summary, res, CategoryCallMissed, c.Call.ChurchID, err)
			continue
		}
		if !claimed {
			continue
		}

		params := notifier.ReminderParams{ChurchName: c.ChurchName, ScheduledCallID: callID}
		if err := s.sendReminder(ctx, notifier.KindCallMissed, c.ChurchEmail, params); err != nil {
			s.itemFailed(summary, res, CategoryCallMissed, c.Call.ChurchID, err)
			if delErr := s.followUps.DeleteByKey(ctx, c.Call.ChurchID, CategoryCallMissed, &callID); delErr != nil {
				s.logger.Error("Failed to release dedup record after send failure",
					zap.Int("call_id", callID),
					zap.Error(delErr),
				)
			}
			continue
		}
		res.Sent++
		metrics.ReminderSentCount.WithLabelValues(CategoryCallMissed).Inc()
	}
}

func (s *ReminderService) runProposalExpiring(ctx context.Context, now time.Time, summary *RunSummary) {
	res := summary.Categories[CategoryProposalExpiring]

	churches, err := s.churches.ListProposalSentStaleSince(ctx, now.Add(-proposalStaleAge))
	if err != nil {
		s.scanFailed(summary, CategoryProposalExpiring, err)
		return
	}

	for _, ch := range churches {
		res.Candidates++
		metrics.ReminderCandidateCount.WithLabelValues(CategoryProposalExpiring).Inc()

		claimed, err := s.followUps.InsertIfAbsent(ctx, ch.ID, CategoryProposalExpiring, nil)
		if err != nil {
			s.itemFailed(summary, res, CategoryProposalExpiring, ch.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.sendReminder(ctx, notifier.KindProposalExpiring, ch.Email, notifier.ReminderParams{ChurchName: ch.Name}); err != nil {
			s.itemFailed(summary, res, CategoryProposalExpiring, ch.ID, err)
			if delErr := s.followUps.DeleteByKey(ctx, ch.ID, CategoryProposalExpiring, nil); delErr != nil {
				s.logger.Error("Failed to release dedup record after send failure",
					zap.Int("church_id", ch.ID),
					zap.Error(delErr),
				)
			}
			continue
		}
		res.Sent++
		metrics.ReminderSentCount.WithLabelValues(CategoryProposalExpiring).Inc()
	}
}

func (s *ReminderService) runInactiveReminder(ctx context.Context, now time.Time, summary *RunSummary) {
	res := summary.Categories[CategoryInactiveReminder]

	churches, err := s.churches.ListActiveStaleSince(ctx, now.Add(-inactiveStaleAge))
	if err != nil {
		s.scanFailed(summary, CategoryInactiveReminder, err)
		return
	}

	for _, ch := range churches {
		res.Candidates++
		metrics.ReminderCandidateCount.WithLabelValues(CategoryInactiveReminder).Inc()

		// Re-eligible after the window ages out: the claim refreshes a record
		// older than the window instead of failing on it.
		claimed, err := s.followUps.InsertOrRefresh(ctx, ch.ID, CategoryInactiveReminder, now.Add(-inactiveStaleAge))
		if err != nil {
			s.itemFailed(summary, res, CategoryInactiveReminder, ch.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.sendReminder(ctx, notifier.KindInactiveReminder, ch.Email, notifier.ReminderParams{ChurchName: ch.Name}); err != nil {
			s.itemFailed(summary, res, CategoryInactiveReminder, ch.ID, err)
			if delErr := s.followUps.DeleteByKey(ctx, ch.ID, CategoryInactiveReminder, nil); delErr != nil {
				s.logger.Error("Failed to release dedup record after send failure",
					zap.Int("church_id", ch.ID),
					zap.Error(delErr),
				)
			}
			continue
		}
		res.Sent++
		metrics.ReminderSentCount.WithLabelValues(CategoryInactiveReminder).Inc()
	}
}

func (s *ReminderService) sendReminder(ctx context.Context, kind notifier.Kind, recipient string, params notifier.ReminderParams) error {
	err := s.notifier.Send(ctx, notifier.Message{
		Kind:      kind,
		Recipient: recipient,
		Params:    params,
	})
	metrics.RecordNotificationSend(string(kind), err == nil)
	return err
}

func (s *ReminderService) scanFailed(summary *RunSummary, category string, err error) {
	summary.Errors = append(summary.Errors, fmt.Sprintf("%s: scan failed: %v", category, err))
	s.logger.Error("Reminder scan failed",
		zap.String("category", category),
		zap.Error(err),
	)
}

func (s *ReminderService) itemFailed(summary *RunSummary, res *CategoryResult, category string, churchID int, err error) {
	res.Failed++
	metrics.ReminderFailedCount.WithLabelValues(category).Inc()
	summary.Errors = append(summary.Errors, fmt.Sprintf("%s: church %d: %v", category, churchID, err))
	s.logger.Warn("Reminder item failed",
		zap.String("category", category),
		zap.Int("church_id", churchID),
		zap.Error(err),
	)
}
