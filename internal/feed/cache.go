package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/picstream/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const authorTTL = 5 * time.Minute

// Cache holds author summaries in Redis for a short TTL so feed assembly
// does not hit the user store once per author per request. A nil *Cache is
// valid and always misses.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a Cache over an existing Redis client
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func authorKey(userID string) string {
	return fmt.Sprintf("author:%s", userID)
}

// Get returns the cached author summary and whether it was present
func (c *Cache) Get(ctx context.Context, userID string) (*models.UserCompact, bool) {
	if c == nil {
		return nil, false
	}
	value, err := c.rdb.Get(ctx, authorKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var summary models.UserCompact
	if err := json.Unmarshal([]byte(value), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores an author summary; failures are ignored, the store is the
// source of truth
func (c *Cache) Set(ctx context.Context, summary *models.UserCompact) {
	if c == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, authorKey(summary.ID), data, authorTTL)
}

// Invalidate drops a cached summary, used after profile updates
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, authorKey(userID))
}
