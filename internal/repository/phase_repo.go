package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

// PhaseRepository reads the immutable phase templates.
type PhaseRepository struct {
	db *pgxpool.Pool
}

func NewPhaseRepository(db *pgxpool.Pool) *PhaseRepository {
	return &PhaseRepository{db: db}
}

func (r *PhaseRepository) GetByID(ctx context.Context, id int) (*model.Phase, error) {
	query := `SELECT id, phase_number, title, description FROM phases WHERE id = $1`
	var p model.Phase
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.PhaseNumber, &p.Title, &p.Description)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhaseRepository) List(ctx context.Context) ([]model.Phase, error) {
	query := `SELECT id, phase_number, title, description FROM phases ORDER BY phase_number`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []model.Phase
	for rows.Next() {
		var p model.Phase
		if err := rows.Scan(&p.ID, &p.PhaseNumber, &p.Title, &p.Description); err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}
