package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"user-import/core/database"
	"user-import/core/reconcile"
	"user-import/feature/userimport/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultBatchSize is the number of rows per statement when Options leaves it unset.
const DefaultBatchSize = 500

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Options tunes the store.
type Options struct {
	BatchSize int
}

// Store persists imported users with gorm. It implements reconcile.Store for
// models.Record and serves the resolver read path.
type Store struct {
	db        *gorm.DB
	batchSize int
	format    string
	schema    *schemaGuard
}

// schemaGuard serializes migrations within the process. Concurrent CREATE TABLE
// statements for the shared table would otherwise race.
type schemaGuard struct {
	mu   sync.Mutex
	done bool
}

var _ reconcile.Store[models.Record] = (*Store)(nil)

// New creates a store on db.
func New(db *gorm.DB, opts Options) *Store {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Store{db: db, batchSize: opts.BatchSize, schema: &schemaGuard{}}
}

// WithFormat returns a copy that records format in the resolver registry.
func (s *Store) WithFormat(format string) *Store {
	c := *s
	c.format = format
	return &c
}

// EnsureSchema creates the user and registry tables if needed.
func (s *Store) EnsureSchema(ctx context.Context, ns reconcile.Namespace) error {
	s.schema.mu.Lock()
	defer s.schema.mu.Unlock()

	if s.schema.done {
		return nil
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&ImportedUser{}, &ResolverDefinition{}); err != nil {
		return fmt.Errorf("failed to migrate import tables: %w", err)
	}
	s.schema.done = true
	return nil
}

// LoadExistingKeys returns the persisted user ids of ns.
func (s *Store) LoadExistingKeys(ctx context.Context, ns reconcile.Namespace) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	ok, err := s.tableExists(ctx, UserTable)
	if err != nil {
		return nil, err
	}
	if !ok {
		return existing, nil
	}

	var ids []string
	if err := s.scope(ctx, s.db, ns).Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load user ids: %w", err)
	}
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// ApplyDiff writes the plan and the registry row in one transaction.
func (s *Store) ApplyDiff(ctx context.Context, ns reconcile.Namespace, plan *reconcile.Plan[models.Record]) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upserts := plan.Upserts()
		for start := 0; start < len(upserts); start += s.batchSize {
			end := min(start+s.batchSize, len(upserts))
			rows := make([]ImportedUser, 0, end-start)
			for _, r := range upserts[start:end] {
				rows = append(rows, fromRecord(ns, r))
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to upsert users: %w", err)
			}
		}

		for start := 0; start < len(plan.Delete); start += s.batchSize {
			end := min(start+s.batchSize, len(plan.Delete))
			err := tx.Where("group_id = ? AND resolver = ? AND user_id IN ?", ns.GroupID, ns.Resolver, plan.Delete[start:end]).
				Delete(&ImportedUser{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete users: %w", err)
			}
		}

		var count int64
		if err := s.scope(ctx, tx, ns).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}

		res := plan.Result()
		now := time.Now()
		def := ResolverDefinition{
			GroupID:     ns.GroupID,
			Resolver:    ns.Resolver,
			Format:      s.format,
			UserCount:   count,
			LastCreated: res.Created,
			LastUpdated: res.Updated,
			LastDeleted: res.Deleted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "resolver"}},
			DoUpdates: clause.AssignmentColumns([]string{"format", "user_count", "last_created", "last_updated", "last_deleted", "updated_at"}),
		}).Create(&def).Error
		if err != nil {
			return fmt.Errorf("failed to register resolver: %w", err)
		}
		return nil
	})
}

// tableExists separates an absent table, which reads as empty, from an
// unreachable database, which is an error.
func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	return database.TableExists(s.db.WithContext(ctx), table)
}

func (s *Store) scope(ctx context.Context, db *gorm.DB, ns reconcile.Namespace) *gorm.DB {
	return db.WithContext(ctx).Model(&ImportedUser{}).
		Where("group_id = ? AND resolver = ?", ns.GroupID, ns.Resolver)
}
