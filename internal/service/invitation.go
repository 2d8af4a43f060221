package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"partnerhub/internal/model"
	"partnerhub/internal/notifier"
	"partnerhub/internal/util"
	"partnerhub/pkg/metrics"
)

type groupStore interface {
	GetByID(ctx context.Context, id int) (*model.Group, error)
	UpdateCoLeadership(ctx context.Context, groupID int, coLeaderID, pendingCoLeaderID *int) error
}

type invitationStore interface {
	GetByToken(ctx context.Context, token string) (*model.CoLeaderInvitation, error)
	CreateExclusive(ctx context.Context, inv *model.CoLeaderInvitation) error
	Resolve(ctx context.Context, id int, status string) (bool, error)
	CancelPendingByGroup(ctx context.Context, groupID int) (int64, error)
}

type leaderLookup interface {
	GetByID(ctx context.Context, id int) (*model.Leader, error)
}

type identityResolver interface {
	ResolveByEmail(ctx context.Context, email string) (*model.Leader, ResolveOutcome, error)
}

// InvitationService runs the co-leadership handoff. A group holds at most one
// pending invitation and at most one co-leader; both are enforced here, not by
// the schema.
type InvitationService struct {
	groups      groupStore
	invitations invitationStore
	leaders     leaderLookup
	identity    identityResolver
	notifier    notifier.Notifier
	logger      *zap.Logger
}

func NewInvitationService(
	groups groupStore,
	invitations invitationStore,
	leaders leaderLookup,
	identity identityResolver,
	n notifier.Notifier,
	logger *zap.Logger,
) *InvitationService {
	return &InvitationService{
		groups:      groups,
		invitations: invitations,
		leaders:     leaders,
		identity:    identity,
		notifier:    n,
		logger:      logger,
	}
}

// loadGroupForLeader fetches the group and verifies the caller is its primary
// leader. Only the primary leader may invite or remove.
func (s *InvitationService) loadGroupForLeader(ctx context.Context, caller Caller, groupID int) (*model.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to load group %d: %w", groupID, err)
	}
	if g.LeaderID != caller.LeaderID {
		return nil, fmt.Errorf("%w: only the primary leader may manage co-leadership", ErrForbidden)
	}
	return g, nil
}

// InviteByLeaderID invites an already-known, active leader.
func (s *InvitationService) InviteByLeaderID(ctx context.Context, caller Caller, groupID, leaderID int) (*model.CoLeaderInvitation, error) {
	g, err := s.loadGroupForLeader(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	if leaderID == caller.LeaderID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrForbidden)
	}
	if g.CoLeaderID != nil {
		return nil, fmt.Errorf("%w: group already has a co-leader", ErrConflict)
	}

	target, err := s.leaders.GetByID(ctx, leaderID)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: leader %d", ErrNotFound, leaderID)
		}
		return nil, fmt.Errorf("failed to load leader %d: %w", leaderID, err)
	}
	if !target.IsActive {
		return nil, fmt.Errorf("%w: leader %d is not active", ErrNotFound, leaderID)
	}

	inv, err := s.createInvitation(ctx, g, caller, target.ID)
	if err != nil {
		return nil, err
	}

	s.send(ctx, notifier.Message{
		Kind:      notifier.KindCoLeaderInvite,
		Recipient: target.Email,
		Params: notifier.CoLeaderInviteParams{
			GroupID:     g.ID,
			InviterName: s.inviterName(ctx, caller),
			Token:       inv.Token,
		},
	})
	return inv, nil
}

// InviteByEmail resolves the email through the identity paths and converges on
// a single pending invitation. The branch decides which email goes out: an
// existing-account invite, or a new-user signup invite carrying the signup
// token.
func (s *InvitationService) InviteByEmail(ctx context.Context, caller Caller, groupID int, email string) (*model.CoLeaderInvitation, error) {
	g, err := s.loadGroupForLeader(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}
	if email == caller.Email {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrForbidden)
	}
	if g.CoLeaderID != nil {
		return nil, fmt.Errorf("%w: group already has a co-leader", ErrConflict)
	}

	target, outcome, err := s.identity.ResolveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.ID == caller.LeaderID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrForbidden)
	}

	inv, err := s.createInvitation(ctx, g, caller, target.ID)
	if err != nil {
		return nil, err
	}

	if outcome == ResolvedExisting {
		s.send(ctx, notifier.Message{
			Kind:      notifier.KindCoLeaderInvite,
			Recipient: target.Email,
			Params: notifier.CoLeaderInviteParams{
				GroupID:     g.ID,
				InviterName: s.inviterName(ctx, caller),
				Token:       inv.Token,
			},
		})
	} else {
		var signupToken string
		if target.SignupToken != nil {
			signupToken = *target.SignupToken
		}
		s.send(ctx, notifier.Message{
			Kind:      notifier.KindCoLeaderSignupInvite,
			Recipient: target.Email,
			Params: notifier.CoLeaderSignupInviteParams{
				GroupID:     g.ID,
				InviterName: s.inviterName(ctx, caller),
				Token:       inv.Token,
				SignupToken: signupToken,
			},
		})
	}
	return inv, nil
}

// createInvitation issues a fresh single-use token, cancels any pending
// invitation, inserts the new one, and records the pending co-leader on the
// group.
func (s *InvitationService) createInvitation(ctx context.Context, g *model.Group, caller Caller, invitedID int) (*model.CoLeaderInvitation, error) {
	token, err := util.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	inv := &model.CoLeaderInvitation{
		GroupID:           g.ID,
		Token:             token,
		InvitedLeaderID:   invitedID,
		InvitedByLeaderID: caller.LeaderID,
	}
	if err := s.invitations.CreateExclusive(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if err := s.groups.UpdateCoLeadership(ctx, g.ID, g.CoLeaderID, &invitedID); err != nil {
		return nil, fmt.Errorf("failed to set pending co-leader: %w", err)
	}

	s.logger.Info("Co-leader invitation created",
		zap.Int("group_id", g.ID),
		zap.Int("invited_leader_id", invitedID),
		zap.Int("invited_by", caller.LeaderID),
	)
	return inv, nil
}

// Accept resolves a pending invitation and seats the co-leader.
func (s *InvitationService) Accept(ctx context.Context, token string) (*model.CoLeaderInvitation, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ok, err := s.invitations.Resolve(ctx, inv.ID, model.InvitationAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invitation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invitation no longer pending", ErrConflict)
	}

	coLeaderID := inv.InvitedLeaderID
	if err := s.groups.UpdateCoLeadership(ctx, inv.GroupID, &coLeaderID, nil); err != nil {
		return nil, fmt.Errorf("failed to seat co-leader: %w", err)
	}

	inv.Status = model.InvitationAccepted
	s.logger.Info("Co-leader invitation accepted",
		zap.Int("group_id", inv.GroupID),
		zap.Int("co_leader_id", coLeaderID),
	)
	return inv, nil
}

// Decline resolves a pending invitation without seating anyone.
func (s *InvitationService) Decline(ctx context.Context, token string) (*model.CoLeaderInvitation, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ok, err := s.invitations.Resolve(ctx, inv.ID, model.InvitationDeclined)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invitation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: invitation no longer pending", ErrConflict)
	}

	if err := s.groups.UpdateCoLeadership(ctx, inv.GroupID, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to clear pending co-leader: %w", err)
	}

	inv.Status = model.InvitationDeclined
	s.logger.Info("Co-leader invitation declined", zap.Int("group_id", inv.GroupID))
	return inv, nil
}

// Cancel withdraws the group's pending invitation.
func (s *InvitationService) Cancel(ctx context.Context, caller Caller, groupID int) error {
	g, err := s.loadGroupForLeader(ctx, caller, groupID)
	if err != nil {
		return err
	}

	cancelled, err := s.invitations.CancelPendingByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	if err := s.groups.UpdateCoLeadership(ctx, groupID, g.CoLeaderID, nil); err != nil {
		return fmt.Errorf("failed to clear pending co-leader: %w", err)
	}

	s.logger.Info("Pending invitation cancelled",
		zap.Int("group_id", groupID),
		zap.Int64("rows", cancelled),
	)
	return nil
}

// RemoveCoLeader unseats an active co-leader and cancels anything pending.
func (s *InvitationService) RemoveCoLeader(ctx context.Context, caller Caller, groupID int) error {
	if _, err := s.loadGroupForLeader(ctx, caller, groupID); err != nil {
		return err
	}

	if _, err := s.invitations.CancelPendingByGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to cancel pending invitation: %w", err)
	}
	if err := s.groups.UpdateCoLeadership(ctx, groupID, nil, nil); err != nil {
		return fmt.Errorf("failed to remove co-leader: %w", err)
	}

	s.logger.Info("Co-leader removed", zap.Int("group_id", groupID))
	return nil
}

func (s *InvitationService) pendingByToken(ctx context.Context, token string) (*model.CoLeaderInvitation, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrValidation)
	}
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: invitation", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	if inv.Status != model.InvitationPending {
		return nil, fmt.Errorf("%w: invitation is %s", ErrConflict, inv.Status)
	}
	return inv, nil
}

func (s *InvitationService) inviterName(ctx context.Context, caller Caller) string {
	l, err := s.leaders.GetByID(ctx, caller.LeaderID)
	if err != nil || l.Name == "" {
		return caller.Email
	}
	return l.Name
}

func (s *InvitationService) send(ctx context.Context, msg notifier.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		metrics.RecordNotificationSend(string(msg.Kind), false)
		s.logger.Error("Failed to send invitation email",
			zap.String("kind", string(msg.Kind)),
			zap.Error(err),
		)
		return
	}
	metrics.RecordNotificationSend(string(msg.Kind), true)
}
