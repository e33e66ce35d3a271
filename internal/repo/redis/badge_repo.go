package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// BadgeRepo caches cheap badge counters (pending interests, unseen matches)
// so the client can poll them without hitting postgres every time. Values
// are short-lived and invalidated on every write that can change them.
type BadgeRepo struct {
	client *goredis.Client
}

func NewBadgeRepo(client *goredis.Client) *BadgeRepo {
	return &BadgeRepo{client: client}
}

func (r *BadgeRepo) GetCount(ctx context.Context, key string) (int, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return 0, false, fmt.Errorf("badge key is required")
	}

	count, err := r.client.Get(ctx, key).Int()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get badge count: %w", err)
	}

	return count, true, nil
}

func (r *BadgeRepo) SetCount(ctx context.Context, key string, count int, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(key) == "" || ttl <= 0 {
		return fmt.Errorf("invalid badge payload")
	}

	if err := r.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("set badge count: %w", err)
	}

	return nil
}

func (r *BadgeRepo) Invalidate(ctx context.Context, keys ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate badge counts: %w", err)
	}

	return nil
}
