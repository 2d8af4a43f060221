package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type InvitationRepository struct {
	db *pgxpool.Pool
}

func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, group_id, token, status, invited_leader_id, invited_by_leader_id, resolved_at, created_at`

func scanInvitation(row interface{ Scan(dest ...any) error }) (*model.CoLeaderInvitation, error) {
	var inv model.CoLeaderInvitation
	err := row.Scan(
		&inv.ID, &inv.GroupID, &inv.Token, &inv.Status,
		&inv.InvitedLeaderID, &inv.InvitedByLeaderID, &inv.ResolvedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByToken returns an invitation by its opaque token.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*model.CoLeaderInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM co_leader_invitations WHERE token = $1`
	return scanInvitation(r.db.QueryRow(ctx, query, token))
}

// GetPendingByGroup returns the group's pending invitation, if any.
func (r *InvitationRepository) GetPendingByGroup(ctx context.Context, groupID int) (*model.CoLeaderInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM co_leader_invitations WHERE group_id = $1 AND status = $2`
	return scanInvitation(r.db.QueryRow(ctx, query, groupID, model.InvitationPending))
}

// CreateExclusive cancels any pending invitation for the group and inserts the
// new one inside a single transaction, so the group never holds two pending
// invitations.
func (r *InvitationRepository) CreateExclusive(ctx context.Context, inv *model.CoLeaderInvitation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        UPDATE co_leader_invitations
        SET status = $2, resolved_at = NOW()
        WHERE group_id = $1 AND status = $3
    `, inv.GroupID, model.InvitationCancelled, model.InvitationPending); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `
        INSERT INTO co_leader_invitations
            (group_id, token, status, invited_leader_id, invited_by_leader_id, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `, inv.GroupID, inv.Token, model.InvitationPending, inv.InvitedLeaderID, inv.InvitedByLeaderID).
		Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return err
	}
	inv.Status = model.InvitationPending

	return tx.Commit(ctx)
}

// Resolve moves a pending invitation to a terminal status. Returns false when
// the invitation was not pending anymore.
func (r *InvitationRepository) Resolve(ctx context.Context, id int, status string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE co_leader_invitations
        SET status = $2, resolved_at = NOW()
        WHERE id = $1 AND status = $3
    `, id, status, model.InvitationPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CancelPendingByGroup cancels whatever pending invitation the group holds.
func (r *InvitationRepository) CancelPendingByGroup(ctx context.Context, groupID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE co_leader_invitations
        SET status = $2, resolved_at = NOW()
        WHERE group_id = $1 AND status = $3
    `, groupID, model.InvitationCancelled, model.InvitationPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
