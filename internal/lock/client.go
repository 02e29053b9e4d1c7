package lock

import (
	"context"

	"github.com/redis/go-redis/v9"

	"expensely/internal/logger"
)

// NewRedisClient connects to Redis. An unreachable server is logged, not
// fatal, since go-redis reconnects lazily.
func NewRedisClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Get().Warnw("unable to reach redis", "addr", addr, "error", err)
	} else {
		logger.Get().Infow("connected to redis", "addr", addr)
	}

	return client
}
