package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON document per email. SETNX makes the first
// writer win.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// redisUser is the stored JSON form of a Record.
type redisUser struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"display_name"`
	PasswordHash      *string   `json:"password_hash"`
	ProviderSubjectID *string   `json:"google_id"`
	AvatarURL         string    `json:"avatar_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewRedisStore creates a Redis-backed user store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "user:email:",
		now:    time.Now,
	}
}

func (r *RedisStore) key(email string) string {
	return r.prefix + strings.ToLower(email)
}

func (r *RedisStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var u redisUser
	if err := json.Unmarshal(val, &u); err != nil {
		return nil, fmt.Errorf("user: failed to unmarshal: %w", err)
	}

	return &Record{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		PasswordHash:      u.PasswordHash,
		ProviderSubjectID: u.ProviderSubjectID,
		AvatarURL:         u.AvatarURL,
		CreatedAt:         u.CreatedAt,
	}, nil
}

func (r *RedisStore) Create(ctx context.Context, rec Record) (*Record, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = r.now().UTC()

	data, err := json.Marshal(redisUser{
		ID:                rec.ID,
		Email:             rec.Email,
		DisplayName:       rec.DisplayName,
		PasswordHash:      rec.PasswordHash,
		ProviderSubjectID: rec.ProviderSubjectID,
		AvatarURL:         rec.AvatarURL,
		CreatedAt:         rec.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("user: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(rec.Email), data, 0).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDuplicateEmail
	}
	return &rec, nil
}

var _ Store = (*RedisStore)(nil)
