// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"user_registry/internal/platform/session"
)

// NewFlashStore creates a FlashStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL flash_messages table.
func NewFlashStore(rdb *redis.Client, db *gorm.DB, ttl time.Duration) session.FlashStore {
	if rdb != nil {
		return session.NewFlashRedis(rdb, "flash", ttl)
	}
	return session.NewFlashGorm(db)
}
