package cmd

import (
	"context"
	"fmt"
	"time"

	"user-import/core/broadcast"
	"user-import/core/config"
	"user-import/core/database"
	"user-import/core/lock"
	"user-import/core/logger"
	"user-import/core/reconcile"
	"user-import/core/storage"
	"user-import/feature/userimport"
	"user-import/feature/userimport/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services bundles the dependencies shared by the server and the CLI commands.
type services struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *store.Store
	locker  lock.Locker
	client  storage.Client
	archive *storage.Archive
	// redis and events are set with the redis lock backend only
	redis  redis.UniversalClient
	events *broadcast.Redis
}

// bootstrap loads the configuration and opens the database. The storage
// client is only created when archiving is enabled.
func bootstrap() (*services, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &services{
		cfg:    cfg,
		logger: l.With(zap.String("database", cfg.Database.Name)),
		db:     db,
		store:  store.New(db, store.Options{BatchSize: cfg.Import.BatchSize}),
	}

	if cfg.Lock.Backend == lock.BackendRedis {
		a.redis = cfg.Lock.NewRedisClient()
		a.events = broadcast.NewRedis(a.redis, a.logger)
	}

	a.locker, err = lock.New(cfg.Lock, a.redis, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create locker: %w", err)
	}

	if cfg.Import.Archive {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.client = client
		a.archive = storage.NewArchive(client, cfg.Storage.Bucket)
	}

	return a, nil
}

// ensureArchive creates the archive bucket. A failure only disables snapshots.
func (a *services) ensureArchive(ctx context.Context) {
	if a.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.archive.EnsureBucket(ctx); err != nil {
		a.logger.Warn("Archive bucket unavailable, snapshots will not be stored",
			zap.String("bucket", a.archive.Bucket()), zap.Error(err))
	}
}

// importService builds the import service around the shared dependencies.
func (a *services) importService() *userimport.Service {
	// A nil *storage.Archive must not become a non-nil interface
	var archiver userimport.Archiver
	if a.archive != nil {
		archiver = a.archive
	}
	svc := userimport.NewService(a.store, a.locker, archiver, a.logger, userimport.Config{
		BcryptCost:     a.cfg.Import.BcryptCost,
		MaxUploadBytes: a.cfg.Import.MaxUploadMB * 1024 * 1024,
	})
	if a.events != nil {
		svc.OnApplied(a.announce)
	}
	return svc
}

// announce tells every server to drop its cached lookups for ns.
func (a *services) announce(ns reconcile.Namespace) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.events.Publish(ctx, ns); err != nil {
		a.logger.Warn("Failed to broadcast applied import", zap.String("namespace", ns.String()), zap.Error(err))
	}
}

func (a *services) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.logger.Sync()
}
