package cache

import (
	"context"
	"fmt"
	"time"

	"poorito-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects to Redis. An empty address returns (nil, nil) and callers run without a cache.
func InitRedis(config utils.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if config.Addr == "" {
		logger.Info("Redis address not set, mountain cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	logger.Info("Redis connected", zap.String("addr", config.Addr), zap.Int("db", config.DB))
	return client, nil
}
