package matching

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps everything in memory with the same relationship
// semantics the SQL layer implements
type fakeStore struct {
	profiles  map[string]*UserProfile
	matches   map[string]*Match
	nearby    []*UserProfile
	distances map[string]float64
	fallback  []*UserProfile

	skips          []string
	recomputeCalls [][]string
	nextID         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  map[string]*UserProfile{},
		matches:   map[string]*Match{},
		distances: map[string]float64{},
	}
}

func (s *fakeStore) addProfile(p *UserProfile) { s.profiles[p.ID] = p }

func (s *fakeStore) GetUserProfile(_ context.Context, userID string) (*UserProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func (s *fakeStore) GetProfilesByIDs(_ context.Context, ids []string) ([]*UserProfile, error) {
	out := []*UserProfile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetExclusionSet(_ context.Context, userID string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range s.matches {
		var other string
		switch {
		case m.UserAID == userID:
			other = m.UserBID
		case m.UserBID == userID:
			other = m.UserAID
		default:
			continue
		}
		include := m.Status == StatusAccepted || m.Status == StatusRejected || m.Status == StatusUnmatched
		if m.Status == StatusPending && m.UserAID == userID {
			include = true
		}
		if include && !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out, nil
}

func (s *fakeStore) GetIncomingLikerIDs(_ context.Context, userID string) ([]string, error) {
	out := []string{}
	for _, m := range s.matches {
		if m.UserBID == userID && m.Status == StatusPending {
			out = append(out, m.UserAID)
		}
	}
	return out, nil
}

func (s *fakeStore) FindCandidatesNear(_ context.Context, requester *UserProfile, _ *DiscoverFilters, excludeIDs []string, _ time.Duration) ([]*UserProfile, map[string]float64, error) {
	excluded := map[string]bool{requester.ID: true}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := []*UserProfile{}
	dists := map[string]float64{}
	for _, p := range s.nearby {
		if excluded[p.ID] {
			continue
		}
		out = append(out, p)
		// the SQL path only reports a distance for rows that have one
		if d, ok := s.distances[p.ID]; ok {
			dists[p.ID] = d
		}
	}
	return out, dists, nil
}

func (s *fakeStore) FindCandidatesByPreference(_ context.Context, requesterID string, excludeIDs []string, _ bool) ([]*UserProfile, error) {
	excluded := map[string]bool{requesterID: true}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := []*UserProfile{}
	for _, p := range s.fallback {
		if !excluded[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetMatchByID(_ context.Context, matchID string) (*Match, error) {
	m, ok := s.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (s *fakeStore) ListAcceptedMatches(_ context.Context, userID string) ([]*Match, error) {
	out := []*Match{}
	for _, m := range s.matches {
		if m.Status == StatusAccepted && m.HasParticipant(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) GetStats(_ context.Context, _ string) (*MatchStats, error) {
	return &MatchStats{}, nil
}

func (s *fakeStore) InsertSkip(_ context.Context, initiatorID, recipientID string, _ *string) error {
	s.nextID++
	s.matches[fmt.Sprintf("skip-%d", s.nextID)] = &Match{
		ID:      fmt.Sprintf("skip-%d", s.nextID),
		UserAID: initiatorID,
		UserBID: recipientID,
		Status:  StatusRejected,
	}
	s.skips = append(s.skips, initiatorID+"->"+recipientID)
	return nil
}

func (s *fakeStore) RecomputeMatchCounters(_ context.Context, userIDs ...string) error {
	s.recomputeCalls = append(s.recomputeCalls, userIDs)
	return nil
}

func (s *fakeStore) Mutate(_ context.Context, fn func(tx MatchTx) error) error {
	return fn(&fakeTx{store: s})
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) GetDirectional(initiatorID, recipientID string) (*Match, error) {
	for _, m := range t.store.matches {
		if m.UserAID == initiatorID && m.UserBID == recipientID &&
			(m.Status == StatusPending || m.Status == StatusAccepted) {
			return m, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (t *fakeTx) GetReciprocal(initiatorID, recipientID string) (*Match, error) {
	for _, m := range t.store.matches {
		if m.UserAID == recipientID && m.UserBID == initiatorID && m.Status == StatusPending {
			return m, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (t *fakeTx) GetByID(matchID string) (*Match, error) {
	m, ok := t.store.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (t *fakeTx) Insert(m *Match) error {
	for _, existing := range t.store.matches {
		samePair := (existing.UserAID == m.UserAID && existing.UserBID == m.UserBID) ||
			(existing.UserAID == m.UserBID && existing.UserBID == m.UserAID)
		active := existing.Status == StatusPending || existing.Status == StatusAccepted
		if samePair && active {
			return errDuplicatePair
		}
	}
	t.store.matches[m.ID] = m
	return nil
}

func (t *fakeTx) Accept(matchID string, initialMessage *string) error {
	m := t.store.matches[matchID]
	m.Status = StatusAccepted
	if initialMessage != nil {
		m.InitialMessage = initialMessage
	}
	return nil
}

func (t *fakeTx) MarkSuperLike(matchID string) error {
	t.store.matches[matchID].IsSuperLike = true
	return nil
}

func (t *fakeTx) SetUnmatched(matchID, byUserID string) error {
	m := t.store.matches[matchID]
	m.Status = StatusUnmatched
	m.UnmatchedBy = &byUserID
	now := time.Now()
	m.UnmatchedAt = &now
	return nil
}

type emittedEvent struct {
	userID string
	event  string
}

type fakeSink struct {
	events []emittedEvent
}

func (f *fakeSink) EmitToUser(userID, event string, _ interface{}) {
	f.events = append(f.events, emittedEvent{userID: userID, event: event})
}

func (f *fakeSink) eventsFor(userID string) []string {
	out := []string{}
	for _, e := range f.events {
		if e.userID == userID {
			out = append(out, e.event)
		}
	}
	return out
}

type fakeNotifier struct {
	likes   []string
	matches []string
}

func (f *fakeNotifier) NotifyNewLike(_ context.Context, recipientID, _ string, _ bool) {
	f.likes = append(f.likes, recipientID)
}

func (f *fakeNotifier) NotifyNewMatch(_ context.Context, userID, _, _ string) {
	f.matches = append(f.matches, userID)
}

func newTestService(store *fakeStore) (*Service, *fakeSink, *fakeNotifier) {
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	svc := NewService(store, sink, notifier, 25, 100, 15*time.Minute)
	return svc, sink, notifier
}

func located(id string, lat, lon float64) *UserProfile {
	return &UserProfile{ID: id, Name: "User " + id, Latitude: &lat, Longitude: &lon}
}

func TestLikeWithoutAnyLocationPersistsNothing(t *testing.T) {
	store := newFakeStore()
	store.addProfile(profileWith("a", nil))
	store.addProfile(profileWith("b", nil))
	svc, sink, notifier := newTestService(store)

	result, err := svc.Like(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, result.MatchStatus)
	assert.Nil(t, result.MatchID)
	assert.False(t, result.IsNewMatch)
	assert.Empty(t, store.matches)
	assert.Empty(t, sink.events)
	assert.Empty(t, notifier.likes)
}

func TestLikeUnknownUser(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	svc, _, _ := newTestService(store)

	_, err := svc.Like(context.Background(), "a", "ghost", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Like(context.Background(), "ghost", "a", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLikeCreatesPendingAndNotifies(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.1))
	svc, sink, notifier := newTestService(store)

	msg := "treino amanhã?"
	result, err := svc.Like(context.Background(), "a", "b", &msg)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, result.MatchStatus)
	require.NotNil(t, result.MatchID)
	assert.False(t, result.IsNewMatch)

	m := store.matches[*result.MatchID]
	require.NotNil(t, m)
	assert.Equal(t, "a", m.UserAID)
	assert.Equal(t, "b", m.UserBID)
	assert.Equal(t, StatusPending, m.Status)
	require.NotNil(t, m.InitialMessage)
	assert.Equal(t, msg, *m.InitialMessage)
	assert.Greater(t, m.CompatibilityScore, 0)

	assert.Equal(t, []string{"match:new"}, sink.eventsFor("b"))
	assert.Empty(t, sink.eventsFor("a"))
	assert.Equal(t, []string{"b"}, notifier.likes)
}

func TestRepeatLikeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.1))
	svc, sink, notifier := newTestService(store)

	first, err := svc.Like(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	sink.events = nil
	notifier.likes = nil

	second, err := svc.Like(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	assert.Equal(t, *first.MatchID, *second.MatchID)
	assert.Equal(t, StatusPending, second.MatchStatus)
	assert.False(t, second.IsNewMatch)
	assert.Len(t, store.matches, 1)
	assert.Empty(t, sink.events)
	assert.Empty(t, notifier.likes)

	// upgrading to a super like flips the flag in place, still silently
	third, err := svc.SuperLike(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	assert.Equal(t, *first.MatchID, *third.MatchID)
	assert.True(t, store.matches[*first.MatchID].IsSuperLike)
	assert.Empty(t, sink.events)
	assert.Empty(t, notifier.likes)
}

func TestMutualLikeWithinProximityAccepts(t *testing.T) {
	store := newFakeStore()
	// roughly 55 km apart
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.5))
	svc, sink, notifier := newTestService(store)

	first, err := svc.Like(context.Background(), "a", "b", nil)
	require.NoError(t, err)
	require.Equal(t, StatusPending, first.MatchStatus)

	result, err := svc.Like(context.Background(), "b", "a", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, result.MatchStatus)
	assert.Equal(t, *first.MatchID, *result.MatchID)
	assert.True(t, result.IsNewMatch)
	assert.Equal(t, StatusAccepted, store.matches[*first.MatchID].Status)

	assert.Contains(t, sink.eventsFor("a"), "match:update")
	assert.Contains(t, sink.eventsFor("b"), "match:update")
	assert.ElementsMatch(t, []string{"a", "b"}, notifier.matches)
	require.Len(t, store.recomputeCalls, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, store.recomputeCalls[0])
}

func TestMutualLikeBeyondProximityStaysPending(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 10, 10))
	svc, _, notifier := newTestService(store)

	first, err := svc.Like(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	result, err := svc.Like(context.Background(), "b", "a", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, result.MatchStatus)
	assert.Equal(t, *first.MatchID, *result.MatchID)
	assert.False(t, result.IsNewMatch)
	assert.Equal(t, StatusPending, store.matches[*first.MatchID].Status)
	assert.Empty(t, notifier.matches)
	assert.Empty(t, store.recomputeCalls)
}

func TestSuperLikeMarksRecord(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.1))
	svc, _, _ := newTestService(store)

	result, err := svc.SuperLike(context.Background(), "a", "b", nil)
	require.NoError(t, err)

	assert.True(t, store.matches[*result.MatchID].IsSuperLike)
}

func TestSkipRecordsRejectionSilently(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.1))
	svc, sink, notifier := newTestService(store)

	err := svc.Skip(context.Background(), "a", "b", strPtr("not my style"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a->b"}, store.skips)
	assert.Empty(t, sink.events)
	assert.Empty(t, notifier.likes)
	assert.Empty(t, notifier.matches)
}

func TestUnmatchRules(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("a", 0, 0))
	store.addProfile(located("b", 0, 0.1))
	store.matches["m1"] = &Match{ID: "m1", UserAID: "a", UserBID: "b", Status: StatusAccepted}
	store.matches["m2"] = &Match{ID: "m2", UserAID: "a", UserBID: "c", Status: StatusPending}
	svc, sink, _ := newTestService(store)

	err := svc.Unmatch(context.Background(), "stranger", "m1")
	assert.ErrorIs(t, err, ErrNotMatchParticipant)

	err = svc.Unmatch(context.Background(), "a", "m2")
	assert.ErrorIs(t, err, ErrInvalidMatchState)

	err = svc.Unmatch(context.Background(), "a", "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	err = svc.Unmatch(context.Background(), "a", "m1")
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatched, store.matches["m1"].Status)
	require.NotNil(t, store.matches["m1"].UnmatchedBy)
	assert.Equal(t, "a", *store.matches["m1"].UnmatchedBy)
	assert.Contains(t, sink.eventsFor("b"), "match:update")

	// terminal state, second attempt fails
	err = svc.Unmatch(context.Background(), "b", "m1")
	assert.ErrorIs(t, err, ErrInvalidMatchState)
}

func TestDiscoverExcludesSettledRelationships(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("me", 0, 0))
	for i, status := range []string{StatusAccepted, StatusRejected, StatusUnmatched} {
		id := fmt.Sprintf("settled-%d", i)
		store.addProfile(located(id, 0, 0.01))
		store.matches[fmt.Sprintf("m-%d", i)] = &Match{
			ID: fmt.Sprintf("m-%d", i), UserAID: "me", UserBID: id, Status: status,
		}
	}
	// my own outgoing pending like
	store.addProfile(located("pending-out", 0, 0.01))
	store.matches["m-out"] = &Match{ID: "m-out", UserAID: "me", UserBID: "pending-out", Status: StatusPending}

	fresh := located("fresh", 0, 0.02)
	store.addProfile(fresh)
	store.nearby = []*UserProfile{
		located("settled-0", 0, 0.01),
		located("settled-1", 0, 0.01),
		located("settled-2", 0, 0.01),
		located("pending-out", 0, 0.01),
		fresh,
	}
	store.distances = map[string]float64{"fresh": 2.2}
	svc, _, _ := newTestService(store)

	resp, err := svc.Discover(context.Background(), "me", &DiscoverFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "fresh", resp.Candidates[0].Profile.ID)
}

func TestDiscoverIncomingLikersFirstAndBypassDistance(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("me", 0, 0))

	// far away, outside any radius, but has liked me
	faraway := located("faraway", 40, 40)
	store.addProfile(faraway)
	store.matches["in1"] = &Match{ID: "in1", UserAID: "faraway", UserBID: "me", Status: StatusPending}

	near := located("near", 0, 0.01)
	store.addProfile(near)
	store.nearby = []*UserProfile{near}
	store.distances = map[string]float64{"near": 1.1}
	svc, _, _ := newTestService(store)

	resp, err := svc.Discover(context.Background(), "me", &DiscoverFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "faraway", resp.Candidates[0].Profile.ID)
	assert.True(t, resp.Candidates[0].IncomingLike)
	assert.Equal(t, "near", resp.Candidates[1].Profile.ID)
	assert.False(t, resp.Candidates[1].IncomingLike)
}

func TestDiscoverSortsByDistanceThenScore(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("me", 0, 0))

	closeLow := located("close-low", 0, 0.01)
	farHigh := located("far-high", 0, 0.3)
	farHigh.ExperienceLevel = strPtr("intermediate")
	me := store.profiles["me"]
	me.ExperienceLevel = strPtr("intermediate")

	noDistance := profileWith("nowhere", nil)
	store.addProfile(closeLow)
	store.addProfile(farHigh)
	store.addProfile(noDistance)
	store.nearby = []*UserProfile{closeLow, farHigh, noDistance}
	store.distances = map[string]float64{"close-low": 1.0, "far-high": 30.0}
	svc, _, _ := newTestService(store)

	resp, err := svc.Discover(context.Background(), "me", &DiscoverFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 3)
	assert.Equal(t, "close-low", resp.Candidates[0].Profile.ID)
	assert.Equal(t, "far-high", resp.Candidates[1].Profile.ID)
	assert.Equal(t, "nowhere", resp.Candidates[2].Profile.ID)
}

func TestDiscoverPaginatesAfterSorting(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("me", 0, 0))
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("c%d", i)
		p := located(id, 0, 0.01*float64(i+1))
		store.addProfile(p)
		store.nearby = append(store.nearby, p)
		store.distances[id] = float64(i + 1)
	}
	svc, _, _ := newTestService(store)

	resp, err := svc.Discover(context.Background(), "me", &DiscoverFilters{Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "c2", resp.Candidates[0].Profile.ID)
	assert.Equal(t, "c3", resp.Candidates[1].Profile.ID)
}

func TestDiscoverFallbackWhenNothingNearby(t *testing.T) {
	store := newFakeStore()
	me := profileWith("me", func(p *UserProfile) { p.PreferenceIDs = []string{"p1"} })
	store.addProfile(me)

	buddy := profileWith("buddy", func(p *UserProfile) { p.PreferenceIDs = []string{"p1"} })
	store.addProfile(buddy)
	store.fallback = []*UserProfile{buddy}

	// settled users stay excluded even on the fallback path
	store.addProfile(profileWith("rejected", nil))
	store.matches["m1"] = &Match{ID: "m1", UserAID: "me", UserBID: "rejected", Status: StatusRejected}
	store.fallback = append(store.fallback, profileWith("rejected", nil))
	svc, _, _ := newTestService(store)

	resp, err := svc.Discover(context.Background(), "me", &DiscoverFilters{})
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "buddy", resp.Candidates[0].Profile.ID)
	assert.Nil(t, resp.Candidates[0].DistanceKm)
}

func TestDiscoverRejectsInvalidFilters(t *testing.T) {
	store := newFakeStore()
	store.addProfile(located("me", 0, 0))
	svc, _, _ := newTestService(store)

	_, err := svc.Discover(context.Background(), "me", &DiscoverFilters{DistanceKm: -5})
	assert.ErrorIs(t, err, ErrInvalidFilters)

	minAge, maxAge := 40, 20
	_, err = svc.Discover(context.Background(), "me", &DiscoverFilters{MinAge: &minAge, MaxAge: &maxAge})
	assert.ErrorIs(t, err, ErrInvalidFilters)
}

func TestDiscoverUnknownRequester(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore())
	_, err := svc.Discover(context.Background(), "ghost", &DiscoverFilters{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCompatibilityEndpointMatchesScorer(t *testing.T) {
	store := newFakeStore()
	a := profileWith("a", func(p *UserProfile) { p.ExperienceLevel = strPtr("beginner") })
	b := profileWith("b", func(p *UserProfile) { p.ExperienceLevel = strPtr("beginner") })
	store.addProfile(a)
	store.addProfile(b)
	svc, _, _ := newTestService(store)

	resp, err := svc.Compatibility(context.Background(), "a", "b")
	require.NoError(t, err)

	expected, factors := Score(a, b)
	assert.Equal(t, expected, resp.Score)
	assert.Equal(t, factors, resp.Factors)
}
