package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// Enabled reports whether a redis client was configured; callers treat a
// disabled or unreachable redis as a cache miss.
func Enabled() bool {
	return Rdb != nil
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write key to redis")
	}
}

// Get returns the cached value and whether it was present.
func Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := Rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read key from redis")
		return nil, false
	}
	return b, true
}
