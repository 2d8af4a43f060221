package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"partnerhub/internal/model"
	"partnerhub/internal/notifier"
)

// --- notifier ---

type fakeNotifier struct {
	messages []notifier.Message
	failNext error
	failAll  error
}

func (f *fakeNotifier) Send(_ context.Context, msg notifier.Message) error {
	if f.failAll != nil {
		return f.failAll
	}
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeNotifier) byKind(kind notifier.Kind) []notifier.Message {
	var out []notifier.Message
	for _, m := range f.messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// --- audit ---

type auditCall struct {
	Action     string
	EntityKind string
	EntityID   int
	Before     any
	After      any
}

type fakeAudit struct {
	calls []auditCall
}

func (f *fakeAudit) Record(_ context.Context, _ Caller, action, entityKind string, entityID int, before, after any, _ string) {
	f.calls = append(f.calls, auditCall{Action: action, EntityKind: entityKind, EntityID: entityID, Before: before, After: after})
}

func (f *fakeAudit) byAction(action string) []auditCall {
	var out []auditCall
	for _, c := range f.calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

// --- churches ---

type fakeChurchStore struct {
	churches  map[int]*model.Church
	updateErr map[int]error
}

func newFakeChurchStore(churches ...*model.Church) *fakeChurchStore {
	s := &fakeChurchStore{churches: map[int]*model.Church{}, updateErr: map[int]error{}}
	for _, ch := range churches {
		s.churches[ch.ID] = ch
	}
	return s
}

func (f *fakeChurchStore) GetByID(_ context.Context, id int) (*model.Church, error) {
	ch, ok := f.churches[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeChurchStore) UpdateLifecycle(_ context.Context, ch *model.Church) error {
	if err := f.updateErr[ch.ID]; err != nil {
		return err
	}
	if _, ok := f.churches[ch.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ch
	cp.UpdatedAt = time.Now()
	f.churches[ch.ID] = &cp
	return nil
}

func (f *fakeChurchStore) listByStatus(status string, field func(*model.Church) time.Time, cutoff time.Time) []model.Church {
	var out []model.Church
	for _, ch := range f.churches {
		if ch.Status == status && !field(ch).After(cutoff) {
			out = append(out, *ch)
		}
	}
	return out
}

func (f *fakeChurchStore) ListPendingAssessmentBefore(_ context.Context, cutoff time.Time) ([]model.Church, error) {
	return f.listByStatus(model.StatusPendingAssessment, func(c *model.Church) time.Time { return c.CreatedAt }, cutoff), nil
}

func (f *fakeChurchStore) ListProposalSentStaleSince(_ context.Context, cutoff time.Time) ([]model.Church, error) {
	return f.listByStatus(model.StatusProposalSent, func(c *model.Church) time.Time { return c.UpdatedAt }, cutoff), nil
}

func (f *fakeChurchStore) ListActiveStaleSince(_ context.Context, cutoff time.Time) ([]model.Church, error) {
	return f.listByStatus(model.StatusActive, func(c *model.Church) time.Time { return c.UpdatedAt }, cutoff), nil
}

// --- groups ---

type fakeGroupStore struct {
	groups map[int]*model.Group
}

func newFakeGroupStore(groups ...*model.Group) *fakeGroupStore {
	s := &fakeGroupStore{groups: map[int]*model.Group{}}
	for _, g := range groups {
		s.groups[g.ID] = g
	}
	return s
}

func (f *fakeGroupStore) GetByID(_ context.Context, id int) (*model.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupStore) GetByChurch(_ context.Context, churchID int) (*model.Group, error) {
	for _, g := range f.groups {
		if g.ChurchID == churchID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeGroupStore) UpdateCoLeadership(_ context.Context, groupID int, coLeaderID, pendingCoLeaderID *int) error {
	g, ok := f.groups[groupID]
	if !ok {
		return pgx.ErrNoRows
	}
	g.CoLeaderID = coLeaderID
	g.PendingCoLeaderID = pendingCoLeaderID
	return nil
}

// --- milestones ---

type fakeMilestoneStore struct {
	milestones map[int]*model.ChurchMilestone
	nextID     int
	deleteErr  error
}

func newFakeMilestoneStore(milestones ...*model.ChurchMilestone) *fakeMilestoneStore {
	s := &fakeMilestoneStore{milestones: map[int]*model.ChurchMilestone{}, nextID: 1}
	for _, m := range milestones {
		s.milestones[m.ID] = m
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
	return s
}

func (f *fakeMilestoneStore) Create(_ context.Context, m *model.ChurchMilestone) error {
	maxOrder := 0
	for _, other := range f.milestones {
		if other.ChurchID == m.ChurchID && other.PhaseID == m.PhaseID && other.DisplayOrder > maxOrder {
			maxOrder = other.DisplayOrder
		}
	}
	m.ID = f.nextID
	f.nextID++
	m.DisplayOrder = maxOrder + 1
	cp := *m
	f.milestones[m.ID] = &cp
	return nil
}

func (f *fakeMilestoneStore) GetByID(_ context.Context, id int) (*model.ChurchMilestone, error) {
	m, ok := f.milestones[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMilestoneStore) ListBucket(_ context.Context, churchID, phaseID int) ([]model.ChurchMilestone, error) {
	var out []model.ChurchMilestone
	for _, m := range f.milestones {
		if m.ChurchID == churchID && m.PhaseID == phaseID {
			out = append(out, *m)
		}
	}
	// display_order asc, id asc
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].DisplayOrder < out[i].DisplayOrder ||
				(out[j].DisplayOrder == out[i].DisplayOrder && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeMilestoneStore) UpdateFields(_ context.Context, m *model.ChurchMilestone) error {
	if _, ok := f.milestones[m.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *m
	f.milestones[m.ID] = &cp
	return nil
}

func (f *fakeMilestoneStore) SwapDisplayOrder(_ context.Context, aID, aOrder, bID, bOrder int) error {
	a, okA := f.milestones[aID]
	b, okB := f.milestones[bID]
	if !okA || !okB {
		return pgx.ErrNoRows
	}
	a.DisplayOrder = bOrder
	b.DisplayOrder = aOrder
	return nil
}

func (f *fakeMilestoneStore) Delete(_ context.Context, id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.milestones, id)
	return nil
}

// --- cascade recorders ---

type cascadeRecorder struct {
	log   *[]string
	name  string
	count int64
}

func (r *cascadeRecorder) DeleteByMilestone(_ context.Context, _ int) (int64, error) {
	*r.log = append(*r.log, r.name)
	return r.count, nil
}

type callClearRecorder struct {
	log   *[]string
	count int64
}

func (r *callClearRecorder) ClearMilestoneRefs(_ context.Context, _ int) (int64, error) {
	*r.log = append(*r.log, "calls")
	return r.count, nil
}

// --- progress ---

type fakeProgressStore struct {
	rows map[string]*model.Progress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: map[string]*model.Progress{}}
}

func progressKey(churchID, milestoneID int) string {
	return fmt.Sprintf("%d/%d", churchID, milestoneID)
}

func (f *fakeProgressStore) GetByChurchAndMilestone(_ context.Context, churchID, milestoneID int) (*model.Progress, error) {
	p, ok := f.rows[progressKey(churchID, milestoneID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressStore) Upsert(_ context.Context, p *model.Progress) error {
	cp := *p
	f.rows[progressKey(p.ChurchID, p.MilestoneID)] = &cp
	return nil
}

// --- leaders ---

type fakeLeaderStore struct {
	leaders map[int]*model.Leader
	nextID  int
}

func newFakeLeaderStore(leaders ...*model.Leader) *fakeLeaderStore {
	s := &fakeLeaderStore{leaders: map[int]*model.Leader{}, nextID: 1}
	for _, l := range leaders {
		s.leaders[l.ID] = l
		if l.ID >= s.nextID {
			s.nextID = l.ID + 1
		}
	}
	return s
}

func (f *fakeLeaderStore) GetByID(_ context.Context, id int) (*model.Leader, error) {
	l, ok := f.leaders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeaderStore) GetByEmail(_ context.Context, email string) (*model.Leader, error) {
	for _, l := range f.leaders {
		if l.Email == email {
			cp := *l
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLeaderStore) GetBySignupToken(_ context.Context, token string) (*model.Leader, error) {
	for _, l := range f.leaders {
		if l.SignupToken != nil && *l.SignupToken == token && !l.IsActive {
			cp := *l
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLeaderStore) CreateUnactivated(_ context.Context, l *model.Leader) error {
	l.ID = f.nextID
	f.nextID++
	cp := *l
	f.leaders[l.ID] = &cp
	return nil
}

func (f *fakeLeaderStore) RefreshSignupToken(_ context.Context, id int, token string, expiresAt time.Time) error {
	l, ok := f.leaders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	l.SignupToken = &token
	l.SignupTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeLeaderStore) Activate(_ context.Context, id int, name, passwordHash string) error {
	l, ok := f.leaders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	l.Name = name
	l.PasswordHash = passwordHash
	l.IsActive = true
	l.ActivatedAt = &now
	l.SignupToken = nil
	l.SignupTokenExpiresAt = nil
	return nil
}

// --- invitations ---

type fakeInvitationStore struct {
	invitations map[int]*model.CoLeaderInvitation
	nextID      int
}

func newFakeInvitationStore(invitations ...*model.CoLeaderInvitation) *fakeInvitationStore {
	s := &fakeInvitationStore{invitations: map[int]*model.CoLeaderInvitation{}, nextID: 1}
	for _, inv := range invitations {
		s.invitations[inv.ID] = inv
		if inv.ID >= s.nextID {
			s.nextID = inv.ID + 1
		}
	}
	return s
}

func (f *fakeInvitationStore) GetByToken(_ context.Context, token string) (*model.CoLeaderInvitation, error) {
	for _, inv := range f.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvitationStore) CreateExclusive(_ context.Context, inv *model.CoLeaderInvitation) error {
	now := time.Now()
	for _, existing := range f.invitations {
		if existing.GroupID == inv.GroupID && existing.Status == model.InvitationPending {
			existing.Status = model.InvitationCancelled
			existing.ResolvedAt = &now
		}
	}
	inv.ID = f.nextID
	f.nextID++
	inv.Status = model.InvitationPending
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeInvitationStore) Resolve(_ context.Context, id int, status string) (bool, error) {
	inv, ok := f.invitations[id]
	if !ok || inv.Status != model.InvitationPending {
		return false, nil
	}
	now := time.Now()
	inv.Status = status
	inv.ResolvedAt = &now
	return true, nil
}

func (f *fakeInvitationStore) CancelPendingByGroup(_ context.Context, groupID int) (int64, error) {
	var n int64
	now := time.Now()
	for _, inv := range f.invitations {
		if inv.GroupID == groupID && inv.Status == model.InvitationPending {
			inv.Status = model.InvitationCancelled
			inv.ResolvedAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeInvitationStore) pendingFor(groupID int) []*model.CoLeaderInvitation {
	var out []*model.CoLeaderInvitation
	for _, inv := range f.invitations {
		if inv.GroupID == groupID && inv.Status == model.InvitationPending {
			out = append(out, inv)
		}
	}
	return out
}

// --- calls ---

type fakeCallStore struct {
	calls map[int]*model.CallWithChurch
}

func newFakeCallStore(calls ...*model.CallWithChurch) *fakeCallStore {
	s := &fakeCallStore{calls: map[int]*model.CallWithChurch{}}
	for _, c := range calls {
		s.calls[c.Call.ID] = c
	}
	return s
}

func (f *fakeCallStore) ListReminderWindow(_ context.Context, from, to time.Time) ([]model.CallWithChurch, error) {
	var out []model.CallWithChurch
	for _, c := range f.calls {
		at := c.Call.ScheduledAt
		if !at.Before(from) && at.Before(to) && !c.Call.Completed && !c.Call.ReminderSent {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCallStore) ListMissedWindow(_ context.Context, from, to time.Time) ([]model.CallWithChurch, error) {
	var out []model.CallWithChurch
	for _, c := range f.calls {
		at := c.Call.ScheduledAt
		if at.After(from) && !at.After(to) && !c.Call.Completed {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCallStore) MarkReminderSent(_ context.Context, callID int) (bool, error) {
	c, ok := f.calls[callID]
	if !ok || c.Call.ReminderSent {
		return false, nil
	}
	c.Call.ReminderSent = true
	return true, nil
}

func (f *fakeCallStore) ClearReminderSent(_ context.Context, callID int) error {
	if c, ok := f.calls[callID]; ok {
		c.Call.ReminderSent = false
	}
	return nil
}

// --- follow-up records ---

type fakeFollowUpStore struct {
	sentAt map[string]time.Time
	now    func() time.Time
}

func newFakeFollowUpStore(now func() time.Time) *fakeFollowUpStore {
	return &fakeFollowUpStore{sentAt: map[string]time.Time{}, now: now}
}

func followUpKey(churchID int, emailType string, callID *int) string {
	id := 0
	if callID != nil {
		id = *callID
	}
	return fmt.Sprintf("%d/%s/%d", churchID, emailType, id)
}

func (f *fakeFollowUpStore) InsertIfAbsent(_ context.Context, churchID int, emailType string, callID *int) (bool, error) {
	key := followUpKey(churchID, emailType, callID)
	if _, ok := f.sentAt[key]; ok {
		return false, nil
	}
	f.sentAt[key] = f.now()
	return true, nil
}

func (f *fakeFollowUpStore) InsertOrRefresh(_ context.Context, churchID int, emailType string, staleBefore time.Time) (bool, error) {
	key := followUpKey(churchID, emailType, nil)
	if at, ok := f.sentAt[key]; ok && at.After(staleBefore) {
		return false, nil
	}
	f.sentAt[key] = f.now()
	return true, nil
}

func (f *fakeFollowUpStore) DeleteByKey(_ context.Context, churchID int, emailType string, callID *int) error {
	delete(f.sentAt, followUpKey(churchID, emailType, callID))
	return nil
}

// --- run lock ---

type fakeRunLock struct {
	held bool
}

func (f *fakeRunLock) Acquire(_ context.Context, _ string) bool { return !f.held }
func (f *fakeRunLock) Release(_ context.Context, _ string)      {}

var errBoom = errors.New("boom")

func testLogger() *zap.Logger {
	return zap.NewNop()
}
