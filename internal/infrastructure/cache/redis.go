package cache

import (
	"context"
	"fmt"

	"go-vaccination-booking/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Options returns the go-redis options for cfg on the given logical database
func Options(cfg config.RedisConfig, db int) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       db,
	}
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg, cfg.DB))

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis")

	return client, nil
}
