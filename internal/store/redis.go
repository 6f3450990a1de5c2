package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// ViewCounter keeps per-post view counts in Redis.
type ViewCounter struct {
	rdb *redis.Client
}

func NewViewCounter(rdb *redis.Client) *ViewCounter {
	return &ViewCounter{rdb: rdb}
}

// Hit increments the counter for a post and returns the new total.
func (v *ViewCounter) Hit(ctx context.Context, postID string) (int64, error) {
	return v.rdb.Incr(ctx, "views:"+postID).Result()
}

// Get returns the current total, 0 for posts never viewed.
func (v *ViewCounter) Get(ctx context.Context, postID string) (int64, error) {
	n, err := v.rdb.Get(ctx, "views:"+postID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Forget drops the counter, used when a post is deleted.
func (v *ViewCounter) Forget(ctx context.Context, postID string) error {
	return v.rdb.Del(ctx, "views:"+postID).Err()
}
