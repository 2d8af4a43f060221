package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) listJoined(ctx context.Context, where string, args ...any) ([]model.CallWithChurch, error) {
	query := `
        SELECT c.id, c.church_id, c.milestone_id, c.scheduled_at, c.completed, c.reminder_sent, c.created_at, c.completed_at,
               ch.name, ch.email
        FROM scheduled_calls c
        JOIN churches ch ON ch.id = c.church_id
        WHERE ` + where + `
        ORDER BY c.scheduled_at
    `
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []model.CallWithChurch
	for rows.Next() {
		var c model.CallWithChurch
		if err := rows.Scan(
			&c.Call.ID, &c.Call.ChurchID, &c.Call.MilestoneID, &c.Call.ScheduledAt,
			&c.Call.Completed, &c.Call.ReminderSent, &c.Call.CreatedAt, &c.Call.CompletedAt,
			&c.ChurchName, &c.ChurchEmail,
		); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// ListReminderWindow returns calls scheduled inside [from, to) that are not
// completed and have not had their reminder sent.
func (r *CallRepository) ListReminderWindow(ctx context.Context, from, to time.Time) ([]model.CallWithChurch, error) {
	return r.listJoined(ctx,
		`c.scheduled_at >= $1 AND c.scheduled_at < $2 AND NOT c.completed AND NOT c.reminder_sent`,
		from, to,
	)
}

// ListMissedWindow returns calls scheduled inside (from, to] that were never
// completed.
func (r *CallRepository) ListMissedWindow(ctx context.Context, from, to time.Time) ([]model.CallWithChurch, error) {
	return r.listJoined(ctx,
		`c.scheduled_at > $1 AND c.scheduled_at <= $2 AND NOT c.completed`,
		from, to,
	)
}

// MarkReminderSent flips the reminder flag. Returns false when another
// invocation already claimed it; the flip is the dedup guard, so only the
// caller that wins sends.
func (r *CallRepository) MarkReminderSent(ctx context.Context, callID int) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE scheduled_calls SET reminder_sent = TRUE WHERE id = $1 AND NOT reminder_sent`,
		callID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearReminderSent releases the flag after a failed send so a later run can
// retry.
func (r *CallRepository) ClearReminderSent(ctx context.Context, callID int) error {
	_, err := r.db.Exec(ctx, `UPDATE scheduled_calls SET reminder_sent = FALSE WHERE id = $1`, callID)
	return err
}

// ClearMilestoneRefs nulls the milestone reference on all calls that point at
// the milestone being deleted.
func (r *CallRepository) ClearMilestoneRefs(ctx context.Context, milestoneID int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE scheduled_calls SET milestone_id = NULL WHERE milestone_id = $1`,
		milestoneID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
