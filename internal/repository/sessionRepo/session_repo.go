package sessionRepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type SessionRepo struct {
	Client *redis.Client
}

func New(client *redis.Client) *SessionRepo {
	return &SessionRepo{Client: client}
}

func (r *SessionRepo) buildKey(token string) string {
	return fmt.Sprintf("auth_%s", token)
}

func (r *SessionRepo) SaveSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	key := r.buildKey(token)
	return r.Client.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err()
}

// GetUserID returns ok=false when the token is unknown or its TTL elapsed.
func (r *SessionRepo) GetUserID(ctx context.Context, token string) (int64, bool, error) {
	key := r.buildKey(token)
	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session value for %s: %w", key, err)
	}
	return userID, true, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, token string) error {
	key := r.buildKey(token)
	return r.Client.Del(ctx, key).Err()
}
