package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/redis/go-redis/v9"
)

// StatsKeyPrefix namespaces per-date player records.
const StatsKeyPrefix = "mlbh2h:stats:"

// RedisCache mirrors per-date player records so several processes can share
// one download.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection. A zero ttl keeps
// records forever.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// StatsKey returns the key holding date's records.
func StatsKey(date string) string {
	return StatsKeyPrefix + date
}

// SaveDate stores date's records, replacing any previous copy.
func (rc *RedisCache) SaveDate(ctx context.Context, date string, players []stats.RawPlayer) error {
	data, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	if err := rc.client.Set(ctx, StatsKey(date), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", date, err)
	}
	return nil
}

// LoadDate returns date's records. ok is false when nothing is stored.
func (rc *RedisCache) LoadDate(ctx context.Context, date string) (players []stats.RawPlayer, ok bool, err error) {
	data, err := rc.client.Get(ctx, StatsKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", date, err)
	}

	if err := json.Unmarshal(data, &players); err != nil {
		return nil, false, fmt.Errorf("decode cached %s: %w", date, err)
	}
	return players, true, nil
}

// DeleteDate drops date's records.
func (rc *RedisCache) DeleteDate(ctx context.Context, date string) error {
	return rc.client.Del(ctx, StatsKey(date)).Err()
}
