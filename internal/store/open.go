package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lexai-app/lexai/internal/config"
)

// redisDialTimeout bounds the reachability check done when opening a RedisStore.
const redisDialTimeout = 3 * time.Second

// Open builds the Store selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageFile, "":
		fs, err := NewFileStore(cfg.ResolveDir())
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageRedis:
		ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
		defer cancel()
		rs, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
