package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerhub/internal/model"
	"partnerhub/internal/notifier"
)

type invitationFixture struct {
	svc         *InvitationService
	groups      *fakeGroupStore
	invitations *fakeInvitationStore
	leaders     *fakeLeaderStore
	notifier    *fakeNotifier
}

func newInvitationFixture(leaders ...*model.Leader) *invitationFixture {
	f := &invitationFixture{
		groups:      newFakeGroupStore(&model.Group{ID: 1, ChurchID: 1, LeaderID: 10}),
		invitations: newFakeInvitationStore(),
		leaders:     newFakeLeaderStore(leaders...),
		notifier:    &fakeNotifier{},
	}
	identity := NewIdentityService(f.leaders, testLogger())
	f.svc = NewInvitationService(f.groups, f.invitations, f.leaders, identity, f.notifier, testLogger())
	return f
}

func activeLeader(id int, email, name string) *model.Leader {
	return &model.Leader{ID: id, Email: email, Name: name, IsActive: true}
}

func TestInviteByLeaderID_CreatesPendingInvitation(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)

	inv, err := f.svc.InviteByLeaderID(context.Background(), leaderCaller(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationPending, inv.Status)
	assert.Equal(t, 20, inv.InvitedLeaderID)
	assert.Equal(t, 10, inv.InvitedByLeaderID)
	assert.Len(t, inv.Token, 64)

	g, err := f.groups.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, g.PendingCoLeaderID)
	assert.Equal(t, 20, *g.PendingCoLeaderID)
	assert.Nil(t, g.CoLeaderID)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notifier.KindCoLeaderInvite, f.notifier.messages[0].Kind)
	assert.Equal(t, "co@grace.example", f.notifier.messages[0].Recipient)
	params, ok := f.notifier.messages[0].Params.(notifier.CoLeaderInviteParams)
	require.True(t, ok)
	assert.Equal(t, "Pat", params.InviterName)
}

func TestInviteByLeaderID_SecondInviteCancelsFirst(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "a@grace.example", "A"),
		activeLeader(30, "b@grace.example", "B"),
	)
	ctx := context.Background()

	first, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 20)
	require.NoError(t, err)
	second, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 30)
	require.NoError(t, err)

	pending := f.invitations.pendingFor(1)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	stale, err := f.invitations.GetByToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationCancelled, stale.Status)

	// The stale token no longer resolves anything.
	_, err = f.svc.Accept(ctx, first.Token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInviteByLeaderID_SelfInviteForbidden(t *testing.T) {
	f := newInvitationFixture(activeLeader(10, "leader@grace.example", "Pat"))

	_, err := f.svc.InviteByLeaderID(context.Background(), leaderCaller(), 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInviteByLeaderID_SeatedCoLeaderConflicts(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	seated := 15
	f.groups.groups[1].CoLeaderID = &seated

	_, err := f.svc.InviteByLeaderID(context.Background(), leaderCaller(), 1, 20)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInviteByLeaderID_InactiveTargetNotFound(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		&model.Leader{ID: 20, Email: "ghost@grace.example"},
	)

	_, err := f.svc.InviteByLeaderID(context.Background(), leaderCaller(), 1, 20)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInviteByLeaderID_NonPrimaryForbidden(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)

	_, err := f.svc.InviteByLeaderID(context.Background(), Caller{LeaderID: 20}, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInviteByEmail_ExistingActiveLeader(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)

	inv, err := f.svc.InviteByEmail(context.Background(), leaderCaller(), 1, "co@grace.example")
	require.NoError(t, err)
	assert.Equal(t, 20, inv.InvitedLeaderID)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notifier.KindCoLeaderInvite, f.notifier.messages[0].Kind)
}

func TestInviteByEmail_NewEmailCreatesUnactivatedIdentity(t *testing.T) {
	f := newInvitationFixture(activeLeader(10, "leader@grace.example", "Pat"))

	inv, err := f.svc.InviteByEmail(context.Background(), leaderCaller(), 1, "new@grace.example")
	require.NoError(t, err)

	created, err := f.leaders.GetByEmail(context.Background(), "new@grace.example")
	require.NoError(t, err)
	assert.False(t, created.IsActive)
	require.NotNil(t, created.SignupToken)
	require.NotNil(t, created.SignupTokenExpiresAt)
	assert.Equal(t, created.ID, inv.InvitedLeaderID)

	assert.Len(t, f.invitations.pendingFor(1), 1)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notifier.KindCoLeaderSignupInvite, f.notifier.messages[0].Kind)
	params, ok := f.notifier.messages[0].Params.(notifier.CoLeaderSignupInviteParams)
	require.True(t, ok)
	assert.Equal(t, *created.SignupToken, params.SignupToken)
	assert.Equal(t, inv.Token, params.Token)
}

func TestInviteByEmail_UnactivatedLeaderGetsFreshToken(t *testing.T) {
	stale := "0000000000000000000000000000000000000000000000000000000000000000"
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		&model.Leader{ID: 20, Email: "invited@grace.example", SignupToken: &stale},
	)

	_, err := f.svc.InviteByEmail(context.Background(), leaderCaller(), 1, "invited@grace.example")
	require.NoError(t, err)

	refreshed, err := f.leaders.GetByID(context.Background(), 20)
	require.NoError(t, err)
	require.NotNil(t, refreshed.SignupToken)
	assert.NotEqual(t, stale, *refreshed.SignupToken)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notifier.KindCoLeaderSignupInvite, f.notifier.messages[0].Kind)
}

func TestInviteByEmail_OwnEmailForbidden(t *testing.T) {
	f := newInvitationFixture(activeLeader(10, "leader@grace.example", "Pat"))

	_, err := f.svc.InviteByEmail(context.Background(), leaderCaller(), 1, "leader@grace.example")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccept_SeatsCoLeader(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	ctx := context.Background()

	inv, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 20)
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationAccepted, accepted.Status)

	g, err := f.groups.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, g.CoLeaderID)
	assert.Equal(t, 20, *g.CoLeaderID)
	assert.Nil(t, g.PendingCoLeaderID)
}

func TestAccept_TwiceConflicts(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	ctx := context.Background()

	inv, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 20)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, inv.Token)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, inv.Token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDecline_ClearsPendingWithoutSeating(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	ctx := context.Background()

	inv, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 20)
	require.NoError(t, err)

	declined, err := f.svc.Decline(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationDeclined, declined.Status)

	g, err := f.groups.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, g.CoLeaderID)
	assert.Nil(t, g.PendingCoLeaderID)
}

func TestAccept_UnknownTokenNotFound(t *testing.T) {
	f := newInvitationFixture(activeLeader(10, "leader@grace.example", "Pat"))

	_, err := f.svc.Accept(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Accept(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancel_WithdrawsPending(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	ctx := context.Background()

	inv, err := f.svc.InviteByLeaderID(ctx, leaderCaller(), 1, 20)
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, leaderCaller(), 1))

	assert.Empty(t, f.invitations.pendingFor(1))
	g, err := f.groups.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, g.PendingCoLeaderID)

	_, err = f.svc.Accept(ctx, inv.Token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRemoveCoLeader_UnseatsAndCancels(t *testing.T) {
	f := newInvitationFixture(activeLeader(10, "leader@grace.example", "Pat"))
	seated := 20
	f.groups.groups[1].CoLeaderID = &seated

	require.NoError(t, f.svc.RemoveCoLeader(context.Background(), leaderCaller(), 1))

	g, err := f.groups.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, g.CoLeaderID)
	assert.Nil(t, g.PendingCoLeaderID)
}

func TestInvite_NotifierFailureStillCreatesInvitation(t *testing.T) {
	f := newInvitationFixture(
		activeLeader(10, "leader@grace.example", "Pat"),
		activeLeader(20, "co@grace.example", "Sam"),
	)
	f.notifier.failAll = errBoom

	inv, err := f.svc.InviteByLeaderID(context.Background(), leaderCaller(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, f.invitations.pendingFor(1), 1)
	assert.Equal(t, model.InvitationPending, inv.Status)
}
