// internal/matching/service.go
// Business logic for discovery, compatibility and the like/match lifecycle

package matching

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on
type Store interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]*UserProfile, error)
	GetExclusionSet(ctx context.Context, userID string) ([]string, error)
	GetIncomingLikerIDs(ctx context.Context, userID string) ([]string, error)
	FindCandidatesNear(ctx context.Context, requester *UserProfile, f *DiscoverFilters, excludeIDs []string, onlineWindow time.Duration) ([]*UserProfile, map[string]float64, error)
	FindCandidatesByPreference(ctx context.Context, requesterID string, excludeIDs []string, hasPreferences bool) ([]*UserProfile, error)
	GetMatchByID(ctx context.Context, matchID string) (*Match, error)
	ListAcceptedMatches(ctx context.Context, userID string) ([]*Match, error)
	GetStats(ctx context.Context, userID string) (*MatchStats, error)
	InsertSkip(ctx context.Context, initiatorID, recipientID string, reason *string) error
	RecomputeMatchCounters(ctx context.Context, userIDs ...string) error
	Mutate(ctx context.Context, fn func(tx MatchTx) error) error
}

// EventSink delivers realtime events to connected users
type EventSink interface {
	EmitToUser(userID, event string, payload interface{})
}

// Notifier creates stored/push notifications for match activity
type Notifier interface {
	NotifyNewLike(ctx context.Context, recipientID, likerName string, superLike bool)
	NotifyNewMatch(ctx context.Context, userID, partnerName, matchID string)
}

// Service implements partner discovery and the match state machine
type Service struct {
	store           Store
	events          EventSink
	notifier        Notifier
	defaultRadiusKm int
	proximityKm     float64
	onlineWindow    time.Duration
}

// NewService creates a matching service. events and notifier may be nil.
func NewService(store Store, events EventSink, notifier Notifier, defaultRadiusKm int, proximityKm float64, onlineWindow time.Duration) *Service {
	return &Service{
		store:           store,
		events:          events,
		notifier:        notifier,
		defaultRadiusKm: defaultRadiusKm,
		proximityKm:     proximityKm,
		onlineWindow:    onlineWindow,
	}
}

// Discover returns a scored, sorted, paginated page of potential partners.
// Users with a pending like toward the requester always surface first and
// skip distance filtering.
func (s *Service) Discover(ctx context.Context, requesterID string, f *DiscoverFilters) (*DiscoverResponse, error) {
	start := time.Now()
	defer func() {
		discoverDuration.Observe(time.Since(start).Seconds())
	}()

	f.ApplyDefaults(s.defaultRadiusKm)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	requester, err := s.store.GetUserProfile(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	exclusion, err := s.store.GetExclusionSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	excluded := toSet(exclusion)

	incomingIDs, err := s.store.GetIncomingLikerIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	incomingIDs = withoutSet(incomingIDs, excluded)
	incomingSet := toSet(incomingIDs)

	incoming, err := s.store.GetProfilesByIDs(ctx, incomingIDs)
	if err != nil {
		return nil, err
	}

	var nearby []*UserProfile
	distances := map[string]float64{}
	if requester.HasLocation() {
		geoExclude := append(append([]string{}, exclusion...), incomingIDs...)
		nearby, distances, err = s.store.FindCandidatesNear(ctx, requester, f, geoExclude, s.onlineWindow)
		if err != nil {
			return nil, err
		}
	}

	merged := mergeProfiles(incoming, nearby)

	if len(merged) == 0 {
		fallback, err := s.store.FindCandidatesByPreference(ctx, requesterID, exclusion, len(requester.PreferenceIDs) > 0)
		if err != nil {
			return nil, err
		}
		merged = fallback
	}

	candidates := make([]*Candidate, 0, len(merged))
	for _, p := range merged {
		score, factors := Score(requester, p)
		compatibilityScores.Observe(float64(score))

		c := &Candidate{
			Profile:            p,
			CompatibilityScore: score,
			Factors:            factors,
			Age:                p.Age(),
			IncomingLike:       incomingSet[p.ID],
		}
		if d, ok := distances[p.ID]; ok {
			c.DistanceKm = &d
		} else if requester.HasLocation() && p.HasLocation() {
			d := haversineKm(*requester.Latitude, *requester.Longitude, *p.Latitude, *p.Longitude)
			c.DistanceKm = &d
		}
		candidates = append(candidates, c)
	}

	sortCandidates(candidates)

	total := len(candidates)
	page := window(candidates, f.Offset, f.Limit)

	return &DiscoverResponse{
		Candidates: page,
		Total:      total,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}, nil
}

// sortCandidates orders incoming likes first, then by ascending distance
// with unknown distance last, breaking ties by descending score
func sortCandidates(cs []*Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.IncomingLike != b.IncomingLike {
			return a.IncomingLike
		}
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			if *a.DistanceKm != *b.DistanceKm {
				return *a.DistanceKm < *b.DistanceKm
			}
		case a.DistanceKm != nil:
			return true
		case b.DistanceKm != nil:
			return false
		}
		return a.CompatibilityScore > b.CompatibilityScore
	})
}

// Like records a like from initiator toward recipient, accepting the match
// when a reciprocal pending like exists and both users are within the
// proximity threshold.
func (s *Service) Like(ctx context.Context, initiatorID, recipientID string, message *string) (*LikeResult, error) {
	return s.like(ctx, initiatorID, recipientID, message, false)
}

// SuperLike is a like with the super-like flag set on the resulting record
func (s *Service) SuperLike(ctx context.Context, initiatorID, recipientID string, message *string) (*LikeResult, error) {
	return s.like(ctx, initiatorID, recipientID, message, true)
}

func (s *Service) like(ctx context.Context, initiatorID, recipientID string, message *string, superLike bool) (*LikeResult, error) {
	initiator, err := s.store.GetUserProfile(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.GetUserProfile(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	// Without any location data the like cannot participate in proximity
	// matching, so nothing is persisted.
	if !initiator.HasLocation() && !recipient.HasLocation() {
		return &LikeResult{MatchStatus: StatusPending, IsNewMatch: false}, nil
	}

	var result *LikeResult
	var acceptedPartner *UserProfile
	var emitPending bool

	// A concurrent like on the same pair can trip the pair uniqueness index;
	// one retry re-reads the reciprocal record and reconciles.
	for attempt := 0; attempt < 2; attempt++ {
		result, acceptedPartner, emitPending = nil, nil, false

		err = s.store.Mutate(ctx, func(tx MatchTx) error {
			existing, err := tx.GetDirectional(initiatorID, recipientID)
			if err == nil {
				id := existing.ID
				result = &LikeResult{MatchStatus: existing.Status, MatchID: &id, IsNewMatch: false}
				if superLike && !existing.IsSuperLike {
					return tx.MarkSuperLike(existing.ID)
				}
				return nil
			}
			if !errors.Is(err, ErrMatchNotFound) {
				return err
			}

			reciprocal, err := tx.GetReciprocal(initiatorID, recipientID)
			if err == nil {
				id := reciprocal.ID
				if s.withinProximity(initiator, recipient) {
					if err := tx.Accept(reciprocal.ID, message); err != nil {
						return err
					}
					result = &LikeResult{MatchStatus: StatusAccepted, MatchID: &id, IsNewMatch: true}
					acceptedPartner = recipient
					return nil
				}
				result = &LikeResult{MatchStatus: StatusPending, MatchID: &id, IsNewMatch: false}
				emitPending = true
				return nil
			}
			if !errors.Is(err, ErrMatchNotFound) {
				return err
			}

			score, _ := Score(initiator, recipient)
			m := &Match{
				ID:                 uuid.NewString(),
				UserAID:            initiatorID,
				UserBID:            recipientID,
				Status:             StatusPending,
				CompatibilityScore: score,
				IsSuperLike:        superLike,
				InitialMessage:     message,
			}
			if err := tx.Insert(m); err != nil {
				return err
			}
			id := m.ID
			result = &LikeResult{MatchStatus: StatusPending, MatchID: &id, IsNewMatch: false}
			emitPending = true
			return nil
		})

		if errors.Is(err, errDuplicatePair) {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	likesTotal.WithLabelValues(likeLabel(superLike)).Inc()

	if acceptedPartner != nil {
		matchesTotal.Inc()
		s.afterMatchAccepted(ctx, initiator, recipient, *result.MatchID)
	} else if emitPending {
		// A repeat like on an existing record short-circuits above without
		// setting emitPending, so the recipient is only told once.
		s.afterLikePending(ctx, initiator, recipientID, *result.MatchID, superLike)
	}

	return result, nil
}

func likeLabel(superLike bool) string {
	if superLike {
		return "super"
	}
	return "regular"
}

func (s *Service) withinProximity(a, b *UserProfile) bool {
	if !a.HasLocation() || !b.HasLocation() {
		return false
	}
	return haversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude) <= s.proximityKm
}

// afterMatchAccepted runs the best-effort side effects of a new match
func (s *Service) afterMatchAccepted(ctx context.Context, initiator, recipient *UserProfile, matchID string) {
	if err := s.store.RecomputeMatchCounters(ctx, initiator.ID, recipient.ID); err != nil {
		log.Printf("matching: failed to recompute counters for match %s: %v", matchID, err)
	}
	if s.events != nil {
		payload := map[string]interface{}{"matchId": matchID, "status": StatusAccepted}
		s.events.EmitToUser(initiator.ID, "match:update", payload)
		s.events.EmitToUser(recipient.ID, "match:update", payload)
	}
	if s.notifier != nil {
		s.notifier.NotifyNewMatch(ctx, initiator.ID, recipient.Name, matchID)
		s.notifier.NotifyNewMatch(ctx, recipient.ID, initiator.Name, matchID)
	}
}

// afterLikePending runs the best-effort side effects of a pending like
func (s *Service) afterLikePending(ctx context.Context, initiator *UserProfile, recipientID, matchID string, superLike bool) {
	if s.events != nil {
		s.events.EmitToUser(recipientID, "match:new", map[string]interface{}{
			"matchId":     matchID,
			"fromUserId":  initiator.ID,
			"isSuperLike": superLike,
		})
	}
	if s.notifier != nil {
		s.notifier.NotifyNewLike(ctx, recipientID, initiator.Name, superLike)
	}
}

// Skip records a terminal rejection. Skips never notify the recipient.
func (s *Service) Skip(ctx context.Context, initiatorID, recipientID string, reason *string) error {
	if _, err := s.store.GetUserProfile(ctx, recipientID); err != nil {
		return err
	}
	if err := s.store.InsertSkip(ctx, initiatorID, recipientID, reason); err != nil {
		return err
	}
	skipsTotal.Inc()
	return nil
}

// Unmatch dissolves an accepted match. Only a participant may unmatch and
// only from the accepted state.
func (s *Service) Unmatch(ctx context.Context, actingUserID, matchID string) error {
	var partnerID string
	err := s.store.Mutate(ctx, func(tx MatchTx) error {
		m, err := tx.GetByID(matchID)
		if err != nil {
			return err
		}
		if !m.HasParticipant(actingUserID) {
			return ErrNotMatchParticipant
		}
		if m.Status != StatusAccepted {
			return ErrInvalidMatchState
		}
		partnerID = m.OtherUser(actingUserID)
		return tx.SetUnmatched(matchID, actingUserID)
	})
	if err != nil {
		return err
	}

	unmatchesTotal.Inc()
	if err := s.store.RecomputeMatchCounters(ctx, actingUserID, partnerID); err != nil {
		log.Printf("matching: failed to recompute counters after unmatch %s: %v", matchID, err)
	}
	if s.events != nil {
		s.events.EmitToUser(partnerID, "match:update", map[string]interface{}{
			"matchId": matchID,
			"status":  StatusUnmatched,
		})
	}
	return nil
}

// ListMatches returns the user's accepted matches with partner profiles
func (s *Service) ListMatches(ctx context.Context, userID string) ([]*MatchView, error) {
	matches, err := s.store.ListAcceptedMatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	partnerIDs := make([]string, len(matches))
	for i, m := range matches {
		partnerIDs[i] = m.OtherUser(userID)
	}
	partners, err := s.store.GetProfilesByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*UserProfile, len(partners))
	for _, p := range partners {
		byID[p.ID] = p
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		partner := byID[m.OtherUser(userID)]
		if partner == nil {
			continue
		}
		unread := m.UnreadCountA
		if m.UserBID == userID {
			unread = m.UnreadCountB
		}
		views = append(views, &MatchView{
			ID:                 m.ID,
			Partner:            partner,
			CompatibilityScore: m.CompatibilityScore,
			IsSuperLike:        m.IsSuperLike,
			LastMessagePreview: m.LastMessagePreview,
			UnreadCount:        unread,
			MatchedAt:          m.UpdatedAt.Format(time.RFC3339),
		})
	}
	return views, nil
}

// Stats returns aggregate like/match counters for the user
func (s *Service) Stats(ctx context.Context, userID string) (*MatchStats, error) {
	return s.store.GetStats(ctx, userID)
}

// Compatibility reports the pairwise score between the requester and
// another user
func (s *Service) Compatibility(ctx context.Context, requesterID, otherID string) (*CompatibilityResponse, error) {
	requester, err := s.store.GetUserProfile(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	other, err := s.store.GetUserProfile(ctx, otherID)
	if err != nil {
		return nil, err
	}
	score, factors := Score(requester, other)
	return &CompatibilityResponse{UserID: otherID, Score: score, Factors: factors}, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func withoutSet(ids []string, exclude map[string]bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if !exclude[id] {
			out = append(out, id)
		}
	}
	return out
}

func mergeProfiles(first, second []*UserProfile) []*UserProfile {
	seen := make(map[string]bool, len(first)+len(second))
	out := make([]*UserProfile, 0, len(first)+len(second))
	for _, p := range first {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	for _, p := range second {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func window(cs []*Candidate, offset, limit int) []*Candidate {
	if offset >= len(cs) {
		return []*Candidate{}
	}
	end := offset + limit
	if end > len(cs) {
		end = len(cs)
	}
	return cs[offset:end]
}
