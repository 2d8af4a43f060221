package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type AttachmentRepository struct {
	db *pgxpool.Pool
}

func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create records an attachment reference. The blob itself lives elsewhere.
func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	query := `
        INSERT INTO milestone_attachments (church_id, milestone_id, file_name, blob_ref, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query, a.ChurchID, a.MilestoneID, a.FileName, a.BlobRef).Scan(&a.ID, &a.CreatedAt)
}

// ListByMilestone returns attachments of one milestone.
func (r *AttachmentRepository) ListByMilestone(ctx context.Context, milestoneID int) ([]model.Attachment, error) {
	query := `
        SELECT id, church_id, milestone_id, file_name, blob_ref, created_at
        FROM milestone_attachments
        WHERE milestone_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, milestoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.ChurchID, &a.MilestoneID, &a.FileName, &a.BlobRef, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// DeleteByMilestone removes all attachments of a milestone.
func (r *AttachmentRepository) DeleteByMilestone(ctx context.Context, milestoneID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM milestone_attachments WHERE milestone_id = $1`, milestoneID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
