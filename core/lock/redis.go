package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix    = "user-import:lock:"
	defaultTTL   = 5 * time.Minute
	retryBackoff = 50 * time.Millisecond
	opTimeout    = 5 * time.Second
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only if the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a Locker shared by every replica connected to the same redis.
// Writers hold a SET NX PX key with a random token; the lease is renewed every
// ttl/3 until release, so ttl only bounds how long a crashed holder blocks others.
// Readers do not lock: a dry run reads a consistent database snapshot on its own.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a redis backed locker. A non-positive ttl uses five minutes.
func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Lock acquires key exclusively, retrying until ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (Release, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	l := r.logger.With(zap.String("lock", key))
	stop := make(chan struct{})
	done := make(chan struct{})
	go r.renew(l, redisKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// The caller's ctx may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			// An expired or stolen lock is left alone by the script
			if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
				l.Error("Failed to release lock, it expires after its ttl", zap.Error(err), zap.Duration("ttl", r.ttl))
			}
		})
	}, nil
}

// renew extends the lease every ttl/3 until stop is closed.
func (r *Redis) renew(l *zap.Logger, redisKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(max(r.ttl/3, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		n, err := renewScript.Run(ctx, r.client, []string{redisKey}, token, r.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			// Retried on the next tick while the lease is still valid
			l.Warn("Failed to renew lock", zap.Error(err))
		case n == 0:
			l.Error("Lock lost before release")
			return
		}
	}
}

// RLock returns immediately.
func (r *Redis) RLock(ctx context.Context, key string) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
