package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository tracks refresh-token sessions by jti. A logged out token
// stays blacklisted until it would have expired anyway.
type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRepository(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisRepository) StoreSession(ctx context.Context, jti string, userID string) error {
	return r.rdb.Set(ctx, "session:"+jti, userID, r.ttl).Err()
}

func (r *RedisRepository) SessionUser(ctx context.Context, jti string) (string, error) {
	userID, err := r.rdb.Get(ctx, "session:"+jti).Result()
	if err == redis.Nil {
		return "", nil
	}
	return userID, err
}

func (r *RedisRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, "blacklist:"+jti).Result()
	return exists == 1, err
}

func (r *RedisRepository) Blacklist(ctx context.Context, jti string) error {
	return r.rdb.Set(ctx, "blacklist:"+jti, "true", r.ttl).Err()
}

func (r *RedisRepository) DeleteSession(ctx context.Context, jti string) error {
	return r.rdb.Del(ctx, "session:"+jti).Err()
}
