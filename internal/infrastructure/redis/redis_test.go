package redis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-rsvp/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client, err := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// テスト間でキーが衝突しないようにランダムなIDを使う
func newTestID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
