package userimport

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"user-import/core/lock"
	"user-import/core/metrics"
	"user-import/core/reconcile"
	"user-import/feature/userimport/models"
	"user-import/feature/userimport/parser"
	"user-import/feature/userimport/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Archiver keeps a copy of every applied snapshot.
type Archiver interface {
	Save(ctx context.Context, group, resolver, format string, content []byte) (string, error)
}

// Config tunes the import service.
type Config struct {
	// BcryptCost hashes plaintext passwords. Zero uses bcrypt.DefaultCost.
	BcryptCost int
	// MaxUploadBytes rejects larger snapshots. Zero disables the check.
	MaxUploadBytes int
}

// Request is one import call.
type Request struct {
	Namespace reconcile.Namespace
	Content   []byte
	Options   parser.Options
	DryRun    bool
}

// Service reconciles uploaded snapshots into the user store.
type Service struct {
	store   *store.Store
	locker  lock.Locker
	archive Archiver
	logger  *zap.Logger
	cfg     Config

	mu        sync.RWMutex
	onApplied []func(reconcile.Namespace)
}

// NewService creates a new import service. archive may be nil.
func NewService(st *store.Store, locker lock.Locker, archive Archiver, logger *zap.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:   st,
		locker:  locker,
		archive: archive,
		logger:  logger,
		cfg:     cfg,
	}
}

// OnApplied registers fn to run after every successful non dry-run import,
// while the namespace lock is still held.
func (s *Service) OnApplied(fn func(reconcile.Namespace)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onApplied = append(s.onApplied, fn)
}

// ImportUsers parses req.Content and reconciles it into req.Namespace.
func (s *Service) ImportUsers(ctx context.Context, req Request) (*models.Report, error) {
	start := time.Now()
	ns := req.Namespace
	format := strings.ToLower(string(req.Options.Format))
	l := s.logger.With(
		zap.String("namespace", ns.String()),
		zap.String("format", format),
		zap.Bool("dry_run", req.DryRun),
	)

	if err := validateNamespace(ns); err != nil {
		return nil, err
	}
	if s.cfg.MaxUploadBytes > 0 && len(req.Content) > s.cfg.MaxUploadBytes {
		return nil, models.Invalid("file", "snapshot of %d bytes exceeds the limit of %d bytes", len(req.Content), s.cfg.MaxUploadBytes)
	}

	p, err := parser.New(req.Options)
	if err != nil {
		return nil, err
	}
	parsed, err := p.Parse(req.Content)
	if err != nil {
		return nil, err
	}
	metrics.RowWarnings.Add(float64(len(parsed.Warnings)))

	if len(parsed.Records) == 0 && parsed.DataRows > 0 {
		metrics.ImportsTotal.WithLabelValues(format, metrics.OutcomeFailed).Inc()
		l.Warn("Import rejected, no valid records", zap.Int("rows", parsed.DataRows), zap.Int("warnings", len(parsed.Warnings)))
		return nil, fmt.Errorf("%w: all %d rows were rejected", ErrNoValidRecords, parsed.DataRows)
	}

	acquire := s.locker.Lock
	if req.DryRun {
		acquire = s.locker.RLock
	}
	release, err := acquire(ctx, ns.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", ns, err)
	}
	defer release()

	records := parsed.Records
	if !req.DryRun {
		if records, err = s.hashPasswords(ctx, records); err != nil {
			return nil, err
		}
	}

	plan, err := reconcile.Reconcile(ctx, s.store.WithFormat(format), ns, records, reconcile.Options{DryRun: req.DryRun})
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(format, metrics.OutcomeFailed).Inc()
		l.Error("Import failed", zap.Error(err))
		return nil, err
	}
	result := plan.Result()

	outcome := metrics.OutcomeDryRun
	if !req.DryRun {
		outcome = metrics.OutcomeApplied
		s.applied(ns)
		s.archiveSnapshot(ctx, l, ns, format, req.Content)
		metrics.RowsChanged.WithLabelValues(string(reconcile.ActionCreate)).Add(float64(result.Created))
		metrics.RowsChanged.WithLabelValues(string(reconcile.ActionUpdate)).Add(float64(result.Updated))
		metrics.RowsChanged.WithLabelValues(string(reconcile.ActionDelete)).Add(float64(result.Deleted))
	}
	metrics.ImportsTotal.WithLabelValues(format, outcome).Inc()
	metrics.ImportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())

	l.Info("Users imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
		zap.Int("parsed", len(records)),
		zap.Int("warnings", len(parsed.Warnings)),
		zap.Duration("duration", time.Since(start)),
	)

	warnings := parsed.Warnings
	if warnings == nil {
		warnings = []models.RowWarning{}
	}
	return &models.Report{
		Result:   result,
		DryRun:   req.DryRun,
		Parsed:   len(records),
		Warnings: warnings,
	}, nil
}

func validateNamespace(ns reconcile.Namespace) error {
	if strings.TrimSpace(ns.GroupID) == "" {
		return models.Invalid("groupid", "is required")
	}
	if strings.TrimSpace(ns.Resolver) == "" {
		return models.Invalid("resolver", "is required")
	}
	return nil
}

// hashPasswords bcrypt hashes plaintext passwords into a copy of records.
func (s *Service) hashPasswords(ctx context.Context, records []models.Record) ([]models.Record, error) {
	out := make([]models.Record, len(records))
	copy(out, records)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range out {
		if !out[i].PasswordPlain || out[i].Password == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(out[i].Password), s.cfg.BcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password on line %d: %w", out[i].Line, err)
			}
			out[i].Password = string(hash)
			out[i].PasswordPlain = false
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applied(ns reconcile.Namespace) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.onApplied {
		fn(ns)
	}
}

// archiveSnapshot stores the raw content. Failures are logged only.
func (s *Service) archiveSnapshot(ctx context.Context, l *zap.Logger, ns reconcile.Namespace, format string, content []byte) {
	if s.archive == nil {
		return
	}
	name, err := s.archive.Save(ctx, ns.GroupID, ns.Resolver, format, content)
	if err != nil {
		l.Warn("Snapshot archive failed", zap.Error(err))
		return
	}
	l.Debug("Snapshot archived", zap.String("object", name))
}
