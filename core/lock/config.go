package lock

import "github.com/redis/go-redis/v9"

// Backend names accepted by Config.Backend.
const (
	BackendLocal = "local"
	BackendRedis = "redis"
)

// Config holds configuration for namespace locking.
type Config struct {
	// Backend is "local" (single process) or "redis" (shared between replicas).
	Backend string `mapstructure:"backend" default:"local"`
	// RedisAddr is the redis host:port used by the redis backend.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisPassword authenticates against redis.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// TTLSeconds bounds how long a crashed holder can keep a redis lock.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
}

// NewRedisClient creates a client for RedisAddr. It connects lazily.
func (c Config) NewRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
	})
}
