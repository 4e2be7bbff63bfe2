package pkg

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/examprep-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings once. The caller owns the client.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DialTimeout = cfg.DialTimeout

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
