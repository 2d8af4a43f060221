package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type ChurchRepository struct {
	db *pgxpool.Pool
}

func NewChurchRepository(db *pgxpool.Pool) *ChurchRepository {
	return &ChurchRepository{db: db}
}

const churchColumns = `id, name, email, status, current_phase, selected_tier, aliases, created_at, updated_at`

func scanChurch(row interface{ Scan(dest ...any) error }) (*model.Church, error) {
	var ch model.Church
	err := row.Scan(
		&ch.ID, &ch.Name, &ch.Email, &ch.Status, &ch.CurrentPhase,
		&ch.SelectedTier, &ch.Aliases, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetByID returns a church by id.
func (r *ChurchRepository) GetByID(ctx context.Context, id int) (*model.Church, error) {
	query := `
        SELECT ` + churchColumns + `
        FROM churches
        WHERE id = $1
    `
	return scanChurch(r.db.QueryRow(ctx, query, id))
}

// UpdateLifecycle writes the engine-owned fields of a church.
func (r *ChurchRepository) UpdateLifecycle(ctx context.Context, ch *model.Church) error {
	query := `
        UPDATE churches
        SET status = $2, current_phase = $3, selected_tier = $4, aliases = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	return r.db.QueryRow(ctx, query,
		ch.ID, ch.Status, ch.CurrentPhase, ch.SelectedTier, ch.Aliases,
	).Scan(&ch.UpdatedAt)
}

func (r *ChurchRepository) listWhere(ctx context.Context, where string, args ...any) ([]model.Church, error) {
	query := `
        SELECT ` + churchColumns + `
        FROM churches
        WHERE ` + where + `
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var churches []model.Church
	for rows.Next() {
		ch, err := scanChurch(rows)
		if err != nil {
			return nil, err
		}
		churches = append(churches, *ch)
	}
	return churches, rows.Err()
}

// ListPendingAssessmentBefore returns churches still awaiting assessment that
// were created before the cutoff.
func (r *ChurchRepository) ListPendingAssessmentBefore(ctx context.Context, cutoff time.Time) ([]model.Church, error) {
	return r.listWhere(ctx, `status = $1 AND created_at <= $2`, model.StatusPendingAssessment, cutoff)
}

// ListProposalSentStaleSince returns churches whose proposal has been sitting
// untouched since before the cutoff.
func (r *ChurchRepository) ListProposalSentStaleSince(ctx context.Context, cutoff time.Time) ([]model.Church, error) {
	return r.listWhere(ctx, `status = $1 AND updated_at <= $2`, model.StatusProposalSent, cutoff)
}

// ListActiveStaleSince returns active churches with no updates since before
// the cutoff.
func (r *ChurchRepository) ListActiveStaleSince(ctx context.Context, cutoff time.Time) ([]model.Church, error) {
	return r.listWhere(ctx, `status = $1 AND updated_at <= $2`, model.StatusActive, cutoff)
}
