package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns a recommendation cache; ttl <= 0 uses the default.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// cachedResult is what a cache entry stores.
type cachedResult struct {
	RunID           string                  `json:"run_id"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

func buildKey(username string, limit int) string {
	return fmt.Sprintf("rec:user:%s:limit:%d", username, limit)
}

// Get recommendations from cache
func (c *Cache) Get(ctx context.Context, username string, limit int) (*domain.RecommendationResult, bool, error) {
	key := buildKey(username, limit)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var entry cachedResult
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}

	return &domain.RecommendationResult{
		RunID:           entry.RunID,
		Recommendations: entry.Recommendations,
		CacheHit:        true,
	}, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, username string, limit int, result *domain.RecommendationResult) error {
	key := buildKey(username, limit)
	val, err := json.Marshal(cachedResult{RunID: result.RunID, Recommendations: result.Recommendations})
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}

	return nil
}

// Clear user cache: used when the user's profile is rebuilt
func (c *Cache) ClearUserCache(ctx context.Context, username string) error {
	pattern := fmt.Sprintf("rec:user:%s:limit:*", username)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
