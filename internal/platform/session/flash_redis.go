package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultFlashTTL bounds how long unread flashes survive in Redis.
const defaultFlashTTL = 10 * time.Minute

// FlashRedis implements FlashStore using a Redis list per session.
type FlashRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ FlashStore = (*FlashRedis)(nil)

// NewFlashRedis creates a new FlashRedis instance.
// If ttl is 0 it defaults to 10 minutes. If prefix is empty it uses "flash".
func NewFlashRedis(client *redis.Client, prefix string, ttl time.Duration) *FlashRedis {
	if ttl <= 0 {
		ttl = defaultFlashTTL
	}
	if prefix == "" {
		prefix = "flash"
	}
	return &FlashRedis{client: client, prefix: prefix, ttl: ttl}
}

// flashKey returns the Redis key for a session's flash list.
func (r *FlashRedis) flashKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Add appends a flash to the session's list and refreshes its TTL.
func (r *FlashRedis) Add(ctx context.Context, sessionID string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	key := r.flashKey(sessionID)
	if err := r.client.RPush(ctx, key, string(data)).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, r.ttl).Err()
}

// Pop reads and clears all flashes for a session.
func (r *FlashRedis) Pop(ctx context.Context, sessionID string) ([]Flash, error) {
	key := r.flashKey(sessionID)

	items, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, err
	}

	flashes := make([]Flash, 0, len(items))
	for _, item := range items {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			slog.Warn("dropping corrupted flash entry", "key", key, "error", err)
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
