// internal/presence/tracker.go
// Online presence over Redis TTL keys, flushed into the users table

package presence

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "presence:"

// LastSeenStore flushes activity into durable storage so discovery's
// online facet works without Redis
type LastSeenStore interface {
	TouchLastSeen(ctx context.Context, userID string) error
}

// Tracker records user activity in Redis with a TTL and mirrors it to the
// database at a coarser interval. Works in degraded DB-only mode when the
// Redis client is nil.
type Tracker struct {
	redis  *redis.Client
	store  LastSeenStore
	window time.Duration

	mu          sync.Mutex
	lastFlushed map[string]time.Time
}

// NewTracker creates a presence tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, store LastSeenStore, window time.Duration) *Tracker {
	return &Tracker{
		redis:       redisClient,
		store:       store,
		window:      window,
		lastFlushed: make(map[string]time.Time),
	}
}

// Touch marks the user active now. Safe to call on every request.
func (t *Tracker) Touch(ctx context.Context, userID string) {
	if t.redis != nil {
		if err := t.redis.Set(ctx, keyPrefix+userID, time.Now().Unix(), t.window).Err(); err != nil {
			log.Printf("presence: failed to set key for %s: %v", userID, err)
		}
	}

	// DB writes are throttled to once a minute per user
	t.mu.Lock()
	last, ok := t.lastFlushed[userID]
	flush := !ok || time.Since(last) > time.Minute
	if flush {
		t.lastFlushed[userID] = time.Now()
	}
	t.mu.Unlock()

	if flush {
		if err := t.store.TouchLastSeen(ctx, userID); err != nil {
			log.Printf("presence: failed to flush last seen for %s: %v", userID, err)
		}
	}
}

// IsOnline reports whether the user was active within the window
func (t *Tracker) IsOnline(ctx context.Context, userID string) bool {
	if t.redis == nil {
		return false
	}
	n, err := t.redis.Exists(ctx, keyPrefix+userID).Result()
	if err != nil {
		log.Printf("presence: failed to check key for %s: %v", userID, err)
		return false
	}
	return n > 0
}

// LastSeen returns the Redis-recorded activity time, zero when unknown
func (t *Tracker) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	if t.redis == nil {
		return time.Time{}, nil
	}
	raw, err := t.redis.Get(ctx, keyPrefix+userID).Int64()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get presence: %w", err)
	}
	return time.Unix(raw, 0), nil
}
