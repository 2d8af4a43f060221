package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"partnerhub/internal/model"
)

type LeaderRepository struct {
	db *pgxpool.Pool
}

func NewLeaderRepository(db *pgxpool.Pool) *LeaderRepository {
	return &LeaderRepository{db: db}
}

const leaderColumns = `id, email, name, password_hash, is_admin, is_active, activated_at, signup_token, signup_token_expires_at, created_at, updated_at`

func scanLeader(row interface{ Scan(dest ...any) error }) (*model.Leader, error) {
	var l model.Leader
	err := row.Scan(
		&l.ID, &l.Email, &l.Name, &l.PasswordHash, &l.IsAdmin, &l.IsActive,
		&l.ActivatedAt, &l.SignupToken, &l.SignupTokenExpiresAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID returns a leader by id.
func (r *LeaderRepository) GetByID(ctx context.Context, id int) (*model.Leader, error) {
	query := `SELECT ` + leaderColumns + ` FROM leaders WHERE id = $1`
	return scanLeader(r.db.QueryRow(ctx, query, id))
}

// GetByEmail returns a leader by email.
func (r *LeaderRepository) GetByEmail(ctx context.Context, email string) (*model.Leader, error) {
	query := `SELECT ` + leaderColumns + ` FROM leaders WHERE email = $1`
	return scanLeader(r.db.QueryRow(ctx, query, email))
}

// GetBySignupToken returns the unactivated leader holding the token.
func (r *LeaderRepository) GetBySignupToken(ctx context.Context, token string) (*model.Leader, error) {
	query := `SELECT ` + leaderColumns + ` FROM leaders WHERE signup_token = $1 AND NOT is_active`
	return scanLeader(r.db.QueryRow(ctx, query, token))
}

// CreateUnactivated inserts a new leader identity that has not signed up yet.
func (r *LeaderRepository) CreateUnactivated(ctx context.Context, l *model.Leader) error {
	query := `
        INSERT INTO leaders (email, name, password_hash, is_admin, is_active, signup_token, signup_token_expires_at, created_at, updated_at)
        VALUES ($1, $2, '', FALSE, FALSE, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query, l.Email, l.Name, l.SignupToken, l.SignupTokenExpiresAt).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

// RefreshSignupToken replaces the signup token and expiry of an unactivated
// leader.
func (r *LeaderRepository) RefreshSignupToken(ctx context.Context, id int, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
        UPDATE leaders
        SET signup_token = $2, signup_token_expires_at = $3, updated_at = NOW()
        WHERE id = $1 AND NOT is_active
    `, id, token, expiresAt)
	return err
}

// Activate marks the leader active, sets name and password, and burns the
// signup token.
func (r *LeaderRepository) Activate(ctx context.Context, id int, name, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE leaders
        SET name = $2, password_hash = $3, is_active = TRUE, activated_at = NOW(),
            signup_token = NULL, signup_token_expires_at = NULL, updated_at = NOW()
        WHERE id = $1
    `, id, name, passwordHash)
	return err
}
