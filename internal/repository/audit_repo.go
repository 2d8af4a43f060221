package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one entry. The table has no update or delete path.
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditLogEntry) error {
	query := `
        INSERT INTO audit_log (actor_id, actor_email, action, entity_kind, entity_id, before, after, message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		e.ActorID, e.ActorEmail, e.Action, e.EntityKind, e.EntityID, e.Before, e.After, e.Message,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListByEntity returns the newest entries for one entity.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityKind string, entityID, limit int) ([]model.AuditLogEntry, error) {
	query := `
        SELECT id, actor_id, actor_email, action, entity_kind, entity_id, before, after, message, created_at
        FROM audit_log
        WHERE entity_kind = $1 AND entity_id = $2
        ORDER BY id DESC
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, entityKind, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorEmail, &e.Action, &e.EntityKind, &e.EntityID,
			&e.Before, &e.After, &e.Message, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
