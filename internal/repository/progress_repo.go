package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type ProgressRepository struct {
	db *pgxpool.Pool
}

func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetByChurchAndMilestone returns the progress row, or pgx.ErrNoRows when the
// pair has never been touched.
func (r *ProgressRepository) GetByChurchAndMilestone(ctx context.Context, churchID, milestoneID int) (*model.Progress, error) {
	query := `
        SELECT id, church_id, milestone_id, completed, completed_at, target_date, notes, updated_at
        FROM milestone_progress
        WHERE church_id = $1 AND milestone_id = $2
    `
	var p model.Progress
	err := r.db.QueryRow(ctx, query, churchID, milestoneID).Scan(
		&p.ID, &p.ChurchID, &p.MilestoneID, &p.Completed, &p.CompletedAt,
		&p.TargetDate, &p.Notes, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates the row lazily on first mutation and replaces the tracked
// fields afterwards.
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.Progress) error {
	query := `
        INSERT INTO milestone_progress
            (church_id, milestone_id, completed, completed_at, target_date, notes, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (church_id, milestone_id) DO UPDATE
        SET completed = EXCLUDED.completed,
            completed_at = EXCLUDED.completed_at,
            target_date = EXCLUDED.target_date,
            notes = EXCLUDED.notes,
            updated_at = NOW()
        RETURNING id, updated_at
    `
	return r.db.QueryRow(ctx, query,
		p.ChurchID, p.MilestoneID, p.Completed, p.CompletedAt, p.TargetDate, p.Notes,
	).Scan(&p.ID, &p.UpdatedAt)
}

// DeleteByMilestone removes all progress rows of a milestone.
func (r *ProgressRepository) DeleteByMilestone(ctx context.Context, milestoneID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM milestone_progress WHERE milestone_id = $1`, milestoneID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
