package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type MilestoneRepository struct {
	db *pgxpool.Pool
}

func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create inserts a milestone at the end of its (church, phase) bucket.
func (r *MilestoneRepository) Create(ctx context.Context, m *model.ChurchMilestone) error {
	query := `
        INSERT INTO church_milestones
            (church_id, phase_id, title, description, is_key_milestone, is_custom, display_order, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6,
            (SELECT COALESCE(MAX(display_order), 0) + 1
             FROM church_milestones
             WHERE church_id = $1 AND phase_id = $2),
            NOW(), NOW())
        RETURNING id, display_order, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		m.ChurchID, m.PhaseID, m.Title, m.Description, m.IsKeyMilestone, m.IsCustom,
	).Scan(&m.ID, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a milestone by id.
func (r *MilestoneRepository) GetByID(ctx context.Context, id int) (*model.ChurchMilestone, error) {
	query := `
        SELECT id, church_id, phase_id, title, description, is_key_milestone, is_custom, display_order, created_at, updated_at
        FROM church_milestones
        WHERE id = $1
    `
	var m model.ChurchMilestone
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ChurchID, &m.PhaseID, &m.Title, &m.Description,
		&m.IsKeyMilestone, &m.IsCustom, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListBucket returns the milestones of one (church, phase) bucket in display
// order. Ties on display_order break on id, which follows insertion order.
func (r *MilestoneRepository) ListBucket(ctx context.Context, churchID, phaseID int) ([]model.ChurchMilestone, error) {
	query := `
        SELECT id, church_id, phase_id, title, description, is_key_milestone, is_custom, display_order, created_at, updated_at
        FROM church_milestones
        WHERE church_id = $1 AND phase_id = $2
        ORDER BY display_order, id
    `
	rows, err := r.db.Query(ctx, query, churchID, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []model.ChurchMilestone
	for rows.Next() {
		var m model.ChurchMilestone
		if err := rows.Scan(
			&m.ID, &m.ChurchID, &m.PhaseID, &m.Title, &m.Description,
			&m.IsKeyMilestone, &m.IsCustom, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// UpdateFields writes the editable fields of a milestone.
func (r *MilestoneRepository) UpdateFields(ctx context.Context, m *model.ChurchMilestone) error {
	query := `
        UPDATE church_milestones
        SET title = $2, description = $3, is_key_milestone = $4, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	return r.db.QueryRow(ctx, query, m.ID, m.Title, m.Description, m.IsKeyMilestone).Scan(&m.UpdatedAt)
}

// SwapDisplayOrder exchanges the display_order of two milestones in a single
// transaction so a crash cannot leave one half of the swap applied.
func (r *MilestoneRepository) SwapDisplayOrder(ctx context.Context, aID, aOrder, bID, bOrder int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE church_milestones SET display_order = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, aID, bOrder); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, bID, aOrder); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes the milestone row itself. Cascade steps run first at the
// service layer.
func (r *MilestoneRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM church_milestones WHERE id = $1`, id)
	return err
}
