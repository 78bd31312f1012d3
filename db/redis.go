// file: db/redis.go

package db

import (
	"context"
	"fmt"
	"net"
	"time"

	"card-bank-api/config"
	"card-bank-api/logger"

	"github.com/redis/go-redis/v9"
)

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// ConnectRedis returns a client for the card list cache. The client is
// closed again if Redis does not answer a ping.
func ConnectRedis(ctx context.Context) (*redis.Client, error) {
	opts := redisOptions(config.AppConfig.Redis)
	rdb := redis.NewClient(opts)

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		logger.Log.WithError(err).WithField("address", opts.Addr).Error("Failed to ping Redis")
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", opts.Addr).Info("Redis connection established successfully")
	return rdb, nil
}
