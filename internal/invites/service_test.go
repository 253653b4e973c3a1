package invites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	matchA, matchB string
	invites        map[string]*Invite
	completed      [][]string
	nextID         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{matchA: "alice", matchB: "bob", invites: map[string]*Invite{}}
}

func (s *fakeStore) GetAcceptedMatchParties(_ context.Context, matchID string) (string, string, error) {
	if matchID != "m1" {
		return "", "", ErrMatchNotFound
	}
	return s.matchA, s.matchB, nil
}

func (s *fakeStore) Insert(_ context.Context, inv *Invite) error {
	s.nextID++
	inv.ID = "inv-" + string(rune('0'+s.nextID))
	inv.Status = StatusPending
	s.invites[inv.ID] = inv
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, inviteID string) (*Invite, error) {
	inv, ok := s.invites[inviteID]
	if !ok {
		return nil, ErrInviteNotFound
	}
	copied := *inv
	return &copied, nil
}

func (s *fakeStore) ListForUser(_ context.Context, userID string, status *string) ([]*Invite, error) {
	out := []*Invite{}
	for _, inv := range s.invites {
		if inv.InviterID != userID && inv.InviteeID != userID {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, inviteID, fromStatus, toStatus string) error {
	inv := s.invites[inviteID]
	if inv == nil || inv.Status != fromStatus {
		return ErrInvalidState
	}
	inv.Status = toStatus
	return nil
}

func (s *fakeStore) IncrementCompletedWorkouts(_ context.Context, userIDs ...string) error {
	s.completed = append(s.completed, userIDs)
	return nil
}

func (s *fakeStore) UserName(_ context.Context, userID string) (string, error) {
	return userID, nil
}

func pendingInvite(store *fakeStore, t *testing.T) *Invite {
	t.Helper()
	svc := NewService(store, nil, nil)
	inv, err := svc.Create(context.Background(), "m1", "alice", &CreateInviteRequest{
		WorkoutType: "strength",
		Date:        "2026-09-01",
		Time:        "18:30",
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvite(t *testing.T) {
	store := newFakeStore()
	inv := pendingInvite(store, t)

	assert.Equal(t, StatusPending, inv.Status)
	assert.Equal(t, "alice", inv.InviterID)
	assert.Equal(t, "bob", inv.InviteeID)
}

func TestCreateInviteRequiresAcceptedMatch(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	req := &CreateInviteRequest{WorkoutType: "cardio", Date: "2026-09-01", Time: "07:00"}

	_, err := svc.Create(context.Background(), "missing", "alice", req)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.Create(context.Background(), "m1", "stranger", req)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestInviteeResponds(t *testing.T) {
	store := newFakeStore()
	inv := pendingInvite(store, t)
	svc := NewService(store, nil, nil)

	// inviter cannot respond to their own invite
	_, err := svc.Accept(context.Background(), inv.ID, "alice")
	assert.ErrorIs(t, err, ErrWrongActor)

	_, err = svc.Accept(context.Background(), inv.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotParticipant)

	accepted, err := svc.Accept(context.Background(), inv.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)

	// no longer pending, cannot respond again
	_, err = svc.Reject(context.Background(), inv.ID, "bob")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInviterCancels(t *testing.T) {
	store := newFakeStore()
	inv := pendingInvite(store, t)
	svc := NewService(store, nil, nil)

	_, err := svc.Cancel(context.Background(), inv.ID, "bob")
	assert.ErrorIs(t, err, ErrWrongActor)

	canceled, err := svc.Cancel(context.Background(), inv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, canceled.Status)

	_, err = svc.Accept(context.Background(), inv.ID, "bob")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteBumpsBothCounters(t *testing.T) {
	store := newFakeStore()
	inv := pendingInvite(store, t)
	svc := NewService(store, nil, nil)

	// must be accepted first
	_, err := svc.Complete(context.Background(), inv.ID, "alice")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Accept(context.Background(), inv.ID, "bob")
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), inv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.Len(t, store.completed, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, store.completed[0])

	_, err = svc.Complete(context.Background(), inv.ID, "bob")
	assert.ErrorIs(t, err, ErrInvalidState)
}
