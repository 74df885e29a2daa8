package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

const (
	sessionKeyPrefix = "session:user:"

	// DefaultSessionTTL bounds how long a renamed or deleted user can still be served from cache.
	DefaultSessionTTL = 5 * time.Minute
)

// SessionCache stores public user records as hashes.
// Key format: session:user:<user_id>
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *SessionCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	fields, err := c.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session cache get: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	user, err := userFromFields(fields)
	if err != nil {
		// Unreadable entries are treated as misses and overwritten on the next Set.
		return nil, nil
	}
	return user, nil
}

// Set never stores the password hash.
func (c *SessionCache) Set(ctx context.Context, user *domain.User) error {
	key := sessionKey(user.ID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, userFields(user))
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func userFields(u *domain.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func userFromFields(f map[string]string) (*domain.User, error) {
	if f["id"] == "" {
		return nil, fmt.Errorf("cached user without id")
	}
	created, err := time.Parse(time.RFC3339Nano, f["created_at"])
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339Nano, f["updated_at"])
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        f["id"],
		Name:      f["name"],
		Email:     f["email"],
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
