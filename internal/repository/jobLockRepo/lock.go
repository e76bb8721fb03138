package jobLockRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// JobLockRepo holds short-lived per-file locks so duplicate deliveries of the
// same thumbnail job are not processed concurrently.
type JobLockRepo struct {
	Client *redis.Client
}

func New(client *redis.Client) *JobLockRepo {
	return &JobLockRepo{
		Client: client,
	}
}

func (r *JobLockRepo) buildKey(fileID int64) string {
	return fmt.Sprintf("thumbnail_lock:%d", fileID)
}

// Acquire reports false when another worker already holds the lock. The
// returned token identifies this holder and must be passed to Release.
func (r *JobLockRepo) Acquire(ctx context.Context, fileID int64, ttl time.Duration) (string, bool, error) {
	key := r.buildKey(fileID)
	token := uuid.NewString()
	ok, err := r.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release is a no-op when the lock expired and was taken by someone else.
func (r *JobLockRepo) Release(ctx context.Context, fileID int64, token string) error {
	key := r.buildKey(fileID)
	return releaseScript.Run(ctx, r.Client, []string{key}, token).Err()
}
