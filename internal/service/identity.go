package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"partnerhub/internal/model"
	"partnerhub/internal/util"
)

// signupTokenTTL is how long a new-leader signup token stays valid.
const signupTokenTTL = 7 * 24 * time.Hour

type leaderStore interface {
	GetByID(ctx context.Context, id int) (*model.Leader, error)
	GetByEmail(ctx context.Context, email string) (*model.Leader, error)
	GetBySignupToken(ctx context.Context, token string) (*model.Leader, error)
	CreateUnactivated(ctx context.Context, l *model.Leader) error
	RefreshSignupToken(ctx context.Context, id int, token string, expiresAt time.Time) error
	Activate(ctx context.Context, id int, name, passwordHash string) error
}

// ResolveOutcome says which identity path an email resolution took.
type ResolveOutcome int

const (
	// ResolvedExisting matched an active, activated leader.
	ResolvedExisting ResolveOutcome = iota
	// ResolvedCreated created a brand-new unactivated leader.
	ResolvedCreated
	// ResolvedRefreshed matched an unactivated leader and refreshed its token.
	ResolvedRefreshed
)

// IdentityService finds or creates unified leader records.
type IdentityService struct {
	leaders leaderStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewIdentityService(leaders leaderStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{leaders: leaders, logger: logger, now: time.Now}
}

// ResolveByEmail returns the leader behind an email, creating an unactivated
// identity with a fresh signup token when none exists, or refreshing the
// token when the identity exists but never activated.
func (s *IdentityService) ResolveByEmail(ctx context.Context, email string) (*model.Leader, ResolveOutcome, error) {
	if email == "" {
		return nil, 0, fmt.Errorf("%w: email is required", ErrValidation)
	}

	l, err := s.leaders.GetByEmail(ctx, email)
	if err != nil && !isNoRows(err) {
		return nil, 0, fmt.Errorf("failed to look up leader by email: %w", err)
	}

	if l != nil && l.IsActive {
		return l, ResolvedExisting, nil
	}

	token, err := util.NewToken()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate signup token: %w", err)
	}
	expiresAt := s.now().Add(signupTokenTTL)

	if l == nil {
		l = &model.Leader{
			Email:                email,
			SignupToken:          &token,
			SignupTokenExpiresAt: &expiresAt,
		}
		if err := s.leaders.CreateUnactivated(ctx, l); err != nil {
			return nil, 0, fmt.Errorf("failed to create leader identity: %w", err)
		}
		l.SignupToken = &token
		l.SignupTokenExpiresAt = &expiresAt
		s.logger.Info("Created unactivated leader identity",
			zap.Int("leader_id", l.ID),
		)
		return l, ResolvedCreated, nil
	}

	// Existing but unactivated: burn the old token and extend the window.
	if err := s.leaders.RefreshSignupToken(ctx, l.ID, token, expiresAt); err != nil {
		return nil, 0, fmt.Errorf("failed to refresh signup token: %w", err)
	}
	l.SignupToken = &token
	l.SignupTokenExpiresAt = &expiresAt
	s.logger.Info("Refreshed signup token for unactivated leader",
		zap.Int("leader_id", l.ID),
	)
	return l, ResolvedRefreshed, nil
}

type ActivateInput struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Activate completes a new-leader signup from an unexpired token.
func (s *IdentityService) Activate(ctx context.Context, in ActivateInput) (*model.Leader, error) {
	if in.Token == "" || in.Name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: token, name and password are required", ErrValidation)
	}

	l, err := s.leaders.GetBySignupToken(ctx, in.Token)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: signup token", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up signup token: %w", err)
	}
	if l.SignupTokenExpiresAt == nil || l.SignupTokenExpiresAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: signup token expired", ErrConflict)
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.leaders.Activate(ctx, l.ID, in.Name, hash); err != nil {
		return nil, fmt.Errorf("failed to activate leader %d: %w", l.ID, err)
	}

	l.Name = in.Name
	l.IsActive = true
	l.SignupToken = nil
	l.SignupTokenExpiresAt = nil
	now := s.now()
	l.ActivatedAt = &now

	s.logger.Info("Leader activated", zap.Int("leader_id", l.ID))
	return l, nil
}
