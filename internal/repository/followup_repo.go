package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowUpRepository struct {
	db *pgxpool.Pool
}

func NewFollowUpRepository(db *pgxpool.Pool) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// InsertIfAbsent claims the dedup key (church, type, call). Returns true only
// for the caller that won the insert; the unique index makes this the atomic
// at-most-once guard under concurrent runs.
func (r *FollowUpRepository) InsertIfAbsent(ctx context.Context, churchID int, emailType string, scheduledCallID *int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO follow_up_email_records (church_id, email_type, scheduled_call_id, sent_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (church_id, email_type, (COALESCE(scheduled_call_id, 0))) DO NOTHING
    `, churchID, emailType, scheduledCallID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// InsertOrRefresh claims the dedup key, or re-claims it when the previous send
// is older than staleBefore. Used by reminders that become eligible again
// after their window ages out.
func (r *FollowUpRepository) InsertOrRefresh(ctx context.Context, churchID int, emailType string, staleBefore time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO follow_up_email_records (church_id, email_type, scheduled_call_id, sent_at)
        VALUES ($1, $2, NULL, NOW())
        ON CONFLICT (church_id, email_type, (COALESCE(scheduled_call_id, 0))) DO UPDATE
        SET sent_at = NOW()
        WHERE follow_up_email_records.sent_at <= $3
    `, churchID, emailType, staleBefore)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByKey releases a dedup key after a failed send so a later run can
// retry the notification.
func (r *FollowUpRepository) DeleteByKey(ctx context.Context, churchID int, emailType string, scheduledCallID *int) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM follow_up_email_records
        WHERE church_id = $1 AND email_type = $2 AND COALESCE(scheduled_call_id, 0) = COALESCE($3, 0)
    `, churchID, emailType, scheduledCallID)
	return err
}
