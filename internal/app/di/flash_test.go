package di

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"user_registry/internal/platform/session"
)

func TestNewFlashStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	t.Run("redis available", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()

		store := NewFlashStore(rdb, db, time.Minute)

		assert.IsType(t, &session.FlashRedis{}, store)
	})

	t.Run("redis unavailable falls back to SQL", func(t *testing.T) {
		store := NewFlashStore(nil, db, time.Minute)

		assert.IsType(t, &session.FlashGorm{}, store)
	})
}
