package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"user_registry/internal/platform/config"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Port: "6379"})

	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	// port 1 is reserved and refuses connections
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: "1"})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
