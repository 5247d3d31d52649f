package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"user-import/core/reconcile"
	"user-import/feature/userimport/models"

	"gorm.io/gorm"
)

// likeEscaper escapes LIKE metacharacters with '!', which needs no quoting in
// any supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// absent maps a missing table to ErrNotFound and passes database errors through.
func absent(err error) error {
	if err != nil {
		return err
	}
	return ErrNotFound
}

// FindByUsername returns the user of ns with the given login name.
func (s *Store) FindByUsername(ctx context.Context, ns reconcile.Namespace, username string) (*models.Record, error) {
	return s.findOne(ctx, ns, "username = ?", username)
}

// FindByUserID returns the user of ns with the given id.
func (s *Store) FindByUserID(ctx context.Context, ns reconcile.Namespace, userID string) (*models.Record, error) {
	return s.findOne(ctx, ns, "user_id = ?", userID)
}

func (s *Store) findOne(ctx context.Context, ns reconcile.Namespace, query string, arg string) (*models.Record, error) {
	if ok, err := s.tableExists(ctx, UserTable); err != nil || !ok {
		return nil, absent(err)
	}

	var row ImportedUser
	err := s.scope(ctx, s.db, ns).Where(query, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	rec := row.ToRecord()
	return &rec, nil
}

// List returns the users of ns whose username matches pattern, ordered by
// username. '*' matches any run of characters; an empty pattern matches all.
func (s *Store) List(ctx context.Context, ns reconcile.Namespace, pattern string) ([]models.Record, error) {
	if ok, err := s.tableExists(ctx, UserTable); err != nil {
		return nil, err
	} else if !ok {
		return []models.Record{}, nil
	}

	q := s.scope(ctx, s.db, ns).Order("username")
	if pattern != "" && pattern != "*" {
		like := strings.ReplaceAll(likeEscaper.Replace(pattern), "*", "%")
		q = q.Where("username LIKE ? ESCAPE '!'", like)
	}

	var rows []ImportedUser
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToRecord())
	}
	return out, nil
}

// Count returns the number of users persisted for ns.
func (s *Store) Count(ctx context.Context, ns reconcile.Namespace) (int64, error) {
	if ok, err := s.tableExists(ctx, UserTable); err != nil || !ok {
		return 0, err
	}

	var count int64
	if err := s.scope(ctx, s.db, ns).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Definitions returns every registered resolver ordered by namespace.
func (s *Store) Definitions(ctx context.Context) ([]ResolverDefinition, error) {
	if ok, err := s.tableExists(ctx, DefinitionTable); err != nil {
		return nil, err
	} else if !ok {
		return []ResolverDefinition{}, nil
	}

	defs := []ResolverDefinition{}
	if err := s.db.WithContext(ctx).Order("group_id, resolver").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("failed to list resolvers: %w", err)
	}
	return defs, nil
}

// Definition returns the registry row of ns.
func (s *Store) Definition(ctx context.Context, ns reconcile.Namespace) (*ResolverDefinition, error) {
	if ok, err := s.tableExists(ctx, DefinitionTable); err != nil || !ok {
		return nil, absent(err)
	}

	var def ResolverDefinition
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND resolver = ?", ns.GroupID, ns.Resolver).
		Take(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver: %w", err)
	}
	return &def, nil
}
