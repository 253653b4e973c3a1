// internal/matching/repository.go
// Data access for profiles, candidate search and match records

package matching

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// profileColumns is the shared projection for user rows, extracting
// lat/lon from the PostGIS geography column.
const profileColumns = `
	u.id, u.name, u.height_cm, u.weight_kg, u.experience_level, u.gender,
	u.birth_date, u.goal, u.available_time, u.city, u.state, u.gym_id,
	u.profile_picture, u.last_seen_at,
	ST_Y(u.current_location::geometry) AS latitude,
	ST_X(u.current_location::geometry) AS longitude`

// Repository provides match persistence over PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new matching repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetUserProfile loads a profile with its workout preference ids
func (r *Repository) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, profileColumns)
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	if err := r.loadPreferences(ctx, []*UserProfile{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfilesByIDs loads profiles (with preference ids) for a batch of users
func (r *Repository) GetProfilesByIDs(ctx context.Context, ids []string) ([]*UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	profiles := []*UserProfile{}
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = ANY($1::uuid[])`, profileColumns)
	if err := r.db.SelectContext(ctx, &profiles, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}

	if err := r.loadPreferences(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *Repository) loadPreferences(ctx context.Context, profiles []*UserProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, len(profiles))
	byID := make(map[string]*UserProfile, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows := []struct {
		UserID       string `db:"user_id"`
		PreferenceID string `db:"preference_id"`
	}{}
	query := `SELECT user_id, preference_id FROM user_workout_preferences WHERE user_id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load workout preferences: %w", err)
	}

	for _, row := range rows {
		p := byID[row.UserID]
		p.PreferenceIDs = append(p.PreferenceIDs, row.PreferenceID)
	}
	return nil
}

// GetExclusionSet returns the ids a user must never see again in discovery:
// counterparts of accepted/rejected/unmatched records in either direction,
// plus recipients of the user's own pending likes.
func (r *Repository) GetExclusionSet(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	query := `
		SELECT CASE WHEN user_a_id = $1 THEN user_b_id ELSE user_a_id END AS other_id
		FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1)
		  AND status IN ('accepted', 'rejected', 'unmatched')
		UNION
		SELECT user_b_id FROM matches
		WHERE user_a_id = $1 AND status = 'pending'`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get exclusion set: %w", err)
	}
	return ids, nil
}

// GetIncomingLikerIDs returns initiators of pending likes toward the user
func (r *Repository) GetIncomingLikerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	query := `SELECT user_a_id FROM matches WHERE user_b_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get incoming likes: %w", err)
	}
	return ids, nil
}

// geoCandidateCap bounds the geographic candidate pool per discovery
// request. Rows are ordered nearest-first, so the cap drops the farthest
// candidates; DiscoverResponse.Total counts within this pool.
const geoCandidateCap = 200

// FindCandidatesNear runs the geographic candidate query. Only called when
// the requester has a location. Returns profiles ordered by ascending
// distance plus a map of distances in km, at most geoCandidateCap rows.
func (r *Repository) FindCandidatesNear(ctx context.Context, requester *UserProfile, f *DiscoverFilters, excludeIDs []string, onlineWindow time.Duration) ([]*UserProfile, map[string]float64, error) {
	point := "ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography"
	conditions := []string{
		"u.id <> $3",
		"u.current_location IS NOT NULL",
		fmt.Sprintf("ST_DWithin(u.current_location, %s, $4)", point),
	}
	args := []interface{}{*requester.Longitude, *requester.Latitude, requester.ID, float64(f.DistanceKm) * 1000}
	argIdx := 5

	if len(excludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("u.id <> ALL($%d::uuid[])", argIdx))
		args = append(args, pq.Array(excludeIDs))
		argIdx++
	}
	if len(f.WorkoutTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM user_workout_preferences uwp
			 WHERE uwp.user_id = u.id AND uwp.preference_id = ANY($%d::uuid[]))`, argIdx))
		args = append(args, pq.Array(f.WorkoutTypes))
		argIdx++
	}
	if f.MinHeight != nil {
		conditions = append(conditions, fmt.Sprintf("u.height_cm >= $%d", argIdx))
		args = append(args, *f.MinHeight)
		argIdx++
	}
	if f.MaxHeight != nil {
		conditions = append(conditions, fmt.Sprintf("u.height_cm <= $%d", argIdx))
		args = append(args, *f.MaxHeight)
		argIdx++
	}
	if f.MinWeight != nil {
		conditions = append(conditions, fmt.Sprintf("u.weight_kg >= $%d", argIdx))
		args = append(args, *f.MinWeight)
		argIdx++
	}
	if f.MaxWeight != nil {
		conditions = append(conditions, fmt.Sprintf("u.weight_kg <= $%d", argIdx))
		args = append(args, *f.MaxWeight)
		argIdx++
	}
	if f.ExperienceLevel != nil {
		conditions = append(conditions, fmt.Sprintf("u.experience_level = $%d", argIdx))
		args = append(args, *f.ExperienceLevel)
		argIdx++
	}
	if f.Gender != nil {
		conditions = append(conditions, fmt.Sprintf("u.gender = $%d", argIdx))
		args = append(args, *f.Gender)
		argIdx++
	}
	if f.MinAge != nil {
		conditions = append(conditions, fmt.Sprintf("u.birth_date <= (CURRENT_DATE - ($%d || ' years')::interval)", argIdx))
		args = append(args, *f.MinAge)
		argIdx++
	}
	if f.MaxAge != nil {
		conditions = append(conditions, fmt.Sprintf("u.birth_date > (CURRENT_DATE - (($%d + 1) || ' years')::interval)", argIdx))
		args = append(args, *f.MaxAge)
		argIdx++
	}
	if f.City != nil {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.city) = LOWER($%d)", argIdx))
		args = append(args, *f.City)
		argIdx++
	}
	if f.State != nil {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.state) = LOWER($%d)", argIdx))
		args = append(args, *f.State)
		argIdx++
	}
	if f.GymID != nil {
		conditions = append(conditions, fmt.Sprintf("u.gym_id = $%d", argIdx))
		args = append(args, *f.GymID)
		argIdx++
	}
	if f.OnlineOnly {
		conditions = append(conditions, fmt.Sprintf("u.last_seen_at >= NOW() - $%d::interval", argIdx))
		args = append(args, fmt.Sprintf("%d seconds", int(onlineWindow.Seconds())))
		argIdx++
	}

	type candidateRow struct {
		UserProfile
		DistanceKm float64 `db:"distance_km"`
	}
	rows := []candidateRow{}
	query := fmt.Sprintf(`
		SELECT %s, ST_Distance(u.current_location, %s) / 1000 AS distance_km
		FROM users u
		WHERE %s
		ORDER BY distance_km ASC
		LIMIT %d`, profileColumns, point, strings.Join(conditions, " AND "), geoCandidateCap)

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("failed to find nearby candidates: %w", err)
	}

	profiles := make([]*UserProfile, len(rows))
	distances := make(map[string]float64, len(rows))
	for i := range rows {
		p := rows[i].UserProfile
		profiles[i] = &p
		distances[p.ID] = rows[i].DistanceKm
	}

	if err := r.loadPreferences(ctx, profiles); err != nil {
		return nil, nil, err
	}
	return profiles, distances, nil
}

// FindCandidatesByPreference is the fallback when the merged geographic and
// incoming lists are empty. With hasPreferences it requires at least one
// shared workout preference, otherwise it returns any unexcluded profiles.
func (r *Repository) FindCandidatesByPreference(ctx context.Context, requesterID string, excludeIDs []string, hasPreferences bool) ([]*UserProfile, error) {
	conditions := []string{"u.id <> $1"}
	args := []interface{}{requesterID}
	argIdx := 2

	if len(excludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("u.id <> ALL($%d::uuid[])", argIdx))
		args = append(args, pq.Array(excludeIDs))
		argIdx++
	}
	if hasPreferences {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM user_workout_preferences mine
			JOIN user_workout_preferences theirs ON theirs.preference_id = mine.preference_id
			WHERE mine.user_id = $1 AND theirs.user_id = u.id)`)
	}

	profiles := []*UserProfile{}
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		WHERE %s
		ORDER BY u.last_seen_at DESC NULLS LAST
		LIMIT 100`, profileColumns, strings.Join(conditions, " AND "))

	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find fallback candidates: %w", err)
	}

	if err := r.loadPreferences(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetMatchByID fetches a match record by id
func (r *Repository) GetMatchByID(ctx context.Context, matchID string) (*Match, error) {
	var m Match
	query := `SELECT * FROM matches WHERE id = $1`
	if err := r.db.GetContext(ctx, &m, query, matchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// ListAcceptedMatches returns a user's accepted matches, most recent first
func (r *Repository) ListAcceptedMatches(ctx context.Context, userID string) ([]*Match, error) {
	matches := []*Match{}
	query := `
		SELECT * FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1) AND status = 'accepted'
		ORDER BY updated_at DESC`
	if err := r.db.SelectContext(ctx, &matches, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// GetStats aggregates a user's match history counters
func (r *Repository) GetStats(ctx context.Context, userID string) (*MatchStats, error) {
	var s MatchStats
	query := `
		SELECT
			COUNT(*) FILTER (WHERE user_a_id = $1 AND status <> 'rejected') AS total_likes_sent,
			COUNT(*) FILTER (WHERE user_b_id = $1 AND status IN ('pending', 'accepted')) AS total_likes_received,
			COUNT(*) FILTER (WHERE (user_a_id = $1 OR user_b_id = $1) AND status = 'accepted') AS active_matches,
			COUNT(*) FILTER (WHERE user_a_id = $1 AND status = 'rejected') AS total_skips
		FROM matches`
	row := r.db.QueryRowxContext(ctx, query, userID)
	if err := row.Scan(&s.TotalLikesSent, &s.TotalLikesReceived, &s.ActiveMatches, &s.TotalSkips); err != nil {
		return nil, fmt.Errorf("failed to get match stats: %w", err)
	}
	return &s, nil
}

// InsertSkip records a terminal rejected marker from initiator to recipient
func (r *Repository) InsertSkip(ctx context.Context, initiatorID, recipientID string, reason *string) error {
	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, status, compatibility_score, skip_reason)
		VALUES ($1, $2, $3, 'rejected', 0, $4)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), initiatorID, recipientID, reason); err != nil {
		return fmt.Errorf("failed to insert skip: %w", err)
	}
	return nil
}

// RecomputeMatchCounters refreshes total_matches for both users from the
// accepted-match count
func (r *Repository) RecomputeMatchCounters(ctx context.Context, userIDs ...string) error {
	query := `
		UPDATE users SET total_matches = (
			SELECT COUNT(*) FROM matches
			WHERE (user_a_id = users.id OR user_b_id = users.id) AND status = 'accepted'
		)
		WHERE id = ANY($1::uuid[])`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("failed to recompute match counters: %w", err)
	}
	return nil
}

// MatchTx is the transactional view used by like/unmatch transitions
type MatchTx interface {
	// GetDirectional locks and returns the initiator->recipient record in an
	// active status, ErrMatchNotFound when absent
	GetDirectional(initiatorID, recipientID string) (*Match, error)
	// GetReciprocal locks and returns a pending recipient->initiator record,
	// ErrMatchNotFound when absent
	GetReciprocal(initiatorID, recipientID string) (*Match, error)
	// GetByID locks and returns a match by id
	GetByID(matchID string) (*Match, error)
	Insert(m *Match) error
	Accept(matchID string, initialMessage *string) error
	MarkSuperLike(matchID string) error
	SetUnmatched(matchID, byUserID string) error
}

// Mutate runs fn inside a transaction, giving it a locked view of match rows
func (r *Repository) Mutate(ctx context.Context, fn func(tx MatchTx) error) error {
	dbTx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&matchTx{ctx: ctx, tx: dbTx}); err != nil {
		dbTx.Rollback()
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type matchTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (t *matchTx) GetDirectional(initiatorID, recipientID string) (*Match, error) {
	var m Match
	query := `
		SELECT * FROM matches
		WHERE user_a_id = $1 AND user_b_id = $2 AND status IN ('pending', 'accepted')
		FOR UPDATE`
	if err := t.tx.GetContext(t.ctx, &m, query, initiatorID, recipientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get directional match: %w", err)
	}
	return &m, nil
}

func (t *matchTx) GetReciprocal(initiatorID, recipientID string) (*Match, error) {
	var m Match
	query := `
		SELECT * FROM matches
		WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'pending'
		FOR UPDATE`
	if err := t.tx.GetContext(t.ctx, &m, query, recipientID, initiatorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get reciprocal match: %w", err)
	}
	return &m, nil
}

func (t *matchTx) GetByID(matchID string) (*Match, error) {
	var m Match
	query := `SELECT * FROM matches WHERE id = $1 FOR UPDATE`
	if err := t.tx.GetContext(t.ctx, &m, query, matchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

func (t *matchTx) Insert(m *Match) error {
	query := `
		INSERT INTO matches (id, user_a_id, user_b_id, status, compatibility_score, is_super_like, initial_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := t.tx.ExecContext(t.ctx, query,
		m.ID, m.UserAID, m.UserBID, m.Status, m.CompatibilityScore, m.IsSuperLike, m.InitialMessage)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// concurrent like on the same pair, caller reconciles
			return errDuplicatePair
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (t *matchTx) Accept(matchID string, initialMessage *string) error {
	query := `
		UPDATE matches
		SET status = 'accepted',
		    initial_message = COALESCE($2, initial_message),
		    updated_at = NOW()
		WHERE id = $1`
	if _, err := t.tx.ExecContext(t.ctx, query, matchID, initialMessage); err != nil {
		return fmt.Errorf("failed to accept match: %w", err)
	}
	return nil
}

func (t *matchTx) MarkSuperLike(matchID string) error {
	query := `UPDATE matches SET is_super_like = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err := t.tx.ExecContext(t.ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to mark super like: %w", err)
	}
	return nil
}

func (t *matchTx) SetUnmatched(matchID, byUserID string) error {
	query := `
		UPDATE matches
		SET status = 'unmatched', unmatched_by = $2, unmatched_at = NOW(), updated_at = NOW()
		WHERE id = $1`
	if _, err := t.tx.ExecContext(t.ctx, query, matchID, byUserID); err != nil {
		return fmt.Errorf("failed to unmatch: %w", err)
	}
	return nil
}

var errDuplicatePair = fmt.Errorf("match already exists for pair")
