package resolver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"user-import/core/metrics"
	"user-import/core/reconcile"
	"user-import/feature/userimport/models"
	"user-import/feature/userimport/store"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

// ErrUnsupportedHash is returned when a stored password is not a bcrypt hash.
var ErrUnsupportedHash = errors.New("unsupported password hash scheme")

// Reader is the read path of the user store.
type Reader interface {
	FindByUsername(ctx context.Context, ns reconcile.Namespace, username string) (*models.Record, error)
	List(ctx context.Context, ns reconcile.Namespace, pattern string) ([]models.Record, error)
	Count(ctx context.Context, ns reconcile.Namespace) (int64, error)
	Definitions(ctx context.Context) ([]store.ResolverDefinition, error)
	Definition(ctx context.Context, ns reconcile.Namespace) (*store.ResolverDefinition, error)
}

// Info describes one resolver together with its live row count.
type Info struct {
	store.ResolverDefinition
	Rows int64 `json:"rows"`
}

// Service serves resolver lookups through an expiring LRU cache.
type Service struct {
	reader Reader
	logger *zap.Logger
	cache  *expirable.LRU[string, any]
	sf     singleflight.Group
	gen    atomic.Uint64
}

// NewService creates a resolver service. A size of zero disables caching.
func NewService(reader Reader, logger *zap.Logger, size int, ttl time.Duration) *Service {
	s := &Service{reader: reader, logger: logger}
	if size > 0 {
		s.cache = expirable.NewLRU[string, any](size, nil, ttl)
	}
	return s
}

// Invalidate drops every cached entry of ns and the registry.
// Loads that started before the call do not repopulate the cache.
func (s *Service) Invalidate(ns reconcile.Namespace) {
	s.gen.Add(1)
	if s.cache == nil {
		return
	}
	prefix := nsPrefix(ns)
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) || strings.HasPrefix(key, registryKey) {
			s.cache.Remove(key)
		}
	}
	s.logger.Debug("Resolver cache invalidated", zap.String("namespace", ns.String()))
}

const registryKey = "registry"

func nsPrefix(ns reconcile.Namespace) string {
	return ns.String() + "|"
}

// cached serves key from the cache or loads it once for all concurrent callers.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			metrics.CacheHits.Inc()
			return v.(T), nil
		}
		metrics.CacheMisses.Inc()
	}

	gen := s.gen.Load()
	v, err, _ := s.sf.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.gen.Load() == gen {
			s.cache.Add(key, val)
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Resolvers lists the registered resolvers.
func (s *Service) Resolvers(ctx context.Context) ([]store.ResolverDefinition, error) {
	return cached(ctx, s, registryKey, s.reader.Definitions)
}

// Resolver returns the definition and row count of ns.
func (s *Service) Resolver(ctx context.Context, ns reconcile.Namespace) (*Info, error) {
	return cached(ctx, s, nsPrefix(ns)+"info", func(ctx context.Context) (*Info, error) {
		def, err := s.reader.Definition(ctx, ns)
		if err != nil {
			return nil, err
		}
		rows, err := s.reader.Count(ctx, ns)
		if err != nil {
			return nil, err
		}
		return &Info{ResolverDefinition: *def, Rows: rows}, nil
	})
}

// Users lists the users of ns matching a '*' wildcard pattern.
func (s *Service) Users(ctx context.Context, ns reconcile.Namespace, pattern string) ([]models.Record, error) {
	return cached(ctx, s, nsPrefix(ns)+"list|"+pattern, func(ctx context.Context) ([]models.Record, error) {
		return s.reader.List(ctx, ns, pattern)
	})
}

// User looks up one user of ns by login name.
func (s *Service) User(ctx context.Context, ns reconcile.Namespace, username string) (*models.Record, error) {
	return cached(ctx, s, nsPrefix(ns)+"user|"+username, func(ctx context.Context) (*models.Record, error) {
		return s.reader.FindByUsername(ctx, ns, username)
	})
}

// CheckPassword verifies password against the stored bcrypt hash.
// An unknown user or an empty hash is a failed check, not an error.
func (s *Service) CheckPassword(ctx context.Context, ns reconcile.Namespace, username, password string) (bool, error) {
	user, err := s.User(ctx, ns, username)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.Password == "" {
		return false, nil
	}
	if !isBcrypt(user.Password) {
		return false, ErrUnsupportedHash
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func isBcrypt(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
