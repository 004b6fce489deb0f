// Package cache implements the durable prompt cache: responses keyed by
// (tenant, vendor, prompt hash) with TTL expiry and hit counters.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gwerrors "github.com/campaignstack/ai-gateway/internal/gateway/errors"
	"github.com/campaignstack/ai-gateway/internal/shared/redis"
)

// DefaultTTL is applied when a write does not specify a TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is the stored cache value. The raw prompt is kept for debugging.
type Entry struct {
	Prompt      string    `json:"prompt"`
	Response    string    `json:"response"`
	Model       string    `json:"model"`
	TotalTokens int       `json:"total_tokens"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Hits        int       `json:"hits"`
}

// Store is the Redis-backed cache store. Writes are idempotent upserts, so
// concurrent writers racing on one key leave the last writer's content.
type Store struct {
	redis *redis.Client
}

// New creates a cache store on top of the shared Redis client.
func New(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func cacheKey(tenantID, vendor, hash string) string {
	return fmt.Sprintf("llmcache:%s:%s:%s", tenantID, vendor, hash)
}

// Get returns the live entry for a key, or found=false when the entry is
// absent or expired. A true hit increments the entry's hit counter in place,
// preserving the remaining TTL.
func (s *Store) Get(ctx context.Context, tenantID, vendor, hash string) (*Entry, bool, error) {
	key := cacheKey(tenantID, vendor, hash)

	val, err := s.redis.Get(ctx, key)
	if err == redis.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &gwerrors.CacheError{Op: "get", Err: err}
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, false, &gwerrors.CacheError{Op: "get", Err: err}
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		return nil, false, nil
	}

	entry.Hits++
	if data, err := json.Marshal(&entry); err == nil {
		// Lost updates between concurrent hits only undercount; acceptable.
		if err := s.redis.SetKeepTTL(ctx, key, string(data)); err != nil {
			return &entry, true, &gwerrors.CacheError{Op: "hit-count", Err: err}
		}
	}

	return &entry, true, nil
}

// Put upserts an entry, replacing any previous content, resetting the hit
// counter to zero and stamping expiry at now + ttl. A non-positive ttl falls
// back to DefaultTTL.
func (s *Store) Put(ctx context.Context, tenantID, vendor, hash, prompt, response, model string, totalTokens int, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	entry := Entry{
		Prompt:      prompt,
		Response:    response,
		Model:       model,
		TotalTokens: totalTokens,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		Hits:        0,
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		return &gwerrors.CacheError{Op: "put", Err: err}
	}

	if err := s.redis.Set(ctx, cacheKey(tenantID, vendor, hash), string(data), ttl); err != nil {
		return &gwerrors.CacheError{Op: "put", Err: err}
	}
	return nil
}
