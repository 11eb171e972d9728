package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/go-redis/redis/v8"
)

const listingsKey = "listings:published"

// RedisStore keeps the published listings as a single JSON value with a TTL,
// so the map API can serve repeated reads without hitting PostgreSQL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and caches entries for ttl.
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// GetListings returns the cached listings or common.ErrorNotFound on a miss.
func (s *RedisStore) GetListings(ctx context.Context) ([]*models.Listing, error) {
	data, err := s.client.Get(ctx, listingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	var listings []*models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("cache decode error: %w", err)
	}
	return listings, nil
}

// SetListings stores the listings payload under the configured TTL.
func (s *RedisStore) SetListings(ctx context.Context, listings []*models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("cache encode error: %w", err)
	}
	if err := s.client.Set(ctx, listingsKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload; the next read repopulates it. Called
// after a publish toggle so stale listings do not outlive the TTL.
func (s *RedisStore) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, listingsKey).Err(); err != nil {
		return fmt.Errorf("cache del error: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
