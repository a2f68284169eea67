package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/embedding/local"
	"github.com/yungbote/stoplight-backend/internal/embedding/remote"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

func resolveReducer(cfg config.ReducerConfig) (embedding.Reducer, error) {
	switch cfg.Engine {
	case local.Name, "":
		return local.New(), nil
	case remote.Name:
		return remote.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported reducer engine %q", cfg.Engine)
	}
}

// resolveLease returns the slot lease and, for the redis driver, the client
// backing it so the caller can monitor and close it.
func resolveLease(ctx context.Context, log *logger.Logger, cfg config.LeaseConfig) (embedding.Lease, *redis.Client, error) {
	switch cfg.Driver {
	case "local", "":
		return embedding.LocalLease{}, nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return embedding.NewRedisLease(rdb, cfg.Key, cfg.TTL.Duration, cfg.PollInterval.Duration, log), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lease driver %q", cfg.Driver)
	}
}
