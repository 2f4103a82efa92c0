package user_test

import (
	"context"
	"testing"

	"google-auth-service/internal/user"
	"google-auth-service/internal/user/usertest"

	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	// Skip test if Redis is not available
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   3, // separate DB for user store tests
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.FlushDB(ctx)

	usertest.RunStoreTests(t, func(t *testing.T) user.Store {
		return user.NewRedisStore(client)
	})
}
