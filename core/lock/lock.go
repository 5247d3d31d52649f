package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Release frees a held lock. It is safe to call more than once.
type Release func()

// Locker serializes writers per key and lets readers run alongside each other.
type Locker interface {
	// Lock acquires the key exclusively.
	Lock(ctx context.Context, key string) (Release, error)
	// RLock acquires the key shared.
	RLock(ctx context.Context, key string) (Release, error)
}

// New builds the configured locker. client is used by the redis backend; when
// nil, one is created from cfg.
func New(cfg Config, client redis.UniversalClient, logger *zap.Logger) (Locker, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocal(), nil
	case BackendRedis:
		if client == nil {
			client = cfg.NewRedisClient()
		}
		ttl := time.Duration(cfg.TTLSeconds) * time.Second
		return NewRedis(client, ttl, logger), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.Backend)
	}
}
