package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type GroupRepository struct {
	db *pgxpool.Pool
}

func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, church_id, leader_id, co_leader_id, pending_co_leader_id, created_at, updated_at`

func scanGroup(row interface{ Scan(dest ...any) error }) (*model.Group, error) {
	var g model.Group
	err := row.Scan(
		&g.ID, &g.ChurchID, &g.LeaderID, &g.CoLeaderID, &g.PendingCoLeaderID,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByID returns a group by id.
func (r *GroupRepository) GetByID(ctx context.Context, id int) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return scanGroup(r.db.QueryRow(ctx, query, id))
}

// GetByChurch returns the leadership group of a church.
func (r *GroupRepository) GetByChurch(ctx context.Context, churchID int) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE church_id = $1`
	return scanGroup(r.db.QueryRow(ctx, query, churchID))
}

// UpdateCoLeadership writes both co-leader slots in one statement.
func (r *GroupRepository) UpdateCoLeadership(ctx context.Context, groupID int, coLeaderID, pendingCoLeaderID *int) error {
	_, err := r.db.Exec(ctx, `
        UPDATE groups
        SET co_leader_id = $2, pending_co_leader_id = $3, updated_at = NOW()
        WHERE id = $1
    `, groupID, coLeaderID, pendingCoLeaderID)
	return err
}
