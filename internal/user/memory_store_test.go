package user_test

import (
	"testing"

	"google-auth-service/internal/user"
	"google-auth-service/internal/user/usertest"
)

func TestMemoryStore(t *testing.T) {
	usertest.RunStoreTests(t, func(t *testing.T) user.Store {
		return user.NewMemoryStore()
	})
}
