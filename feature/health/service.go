package health

import (
	"context"

	"user-import/core/storage"
	"user-import/feature/health/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Component statuses reported by Check.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusDisabled = "disabled"
)

// ComponentStatus is the state of one dependency.
type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report combines the component statuses.
type Report struct {
	Healthy  bool            `json:"healthy"`
	Database ComponentStatus `json:"database"`
	Storage  ComponentStatus `json:"storage"`
}

// Service runs health checks.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new health service. client may be nil when archiving is off.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Check pings the database and the archive bucket. Only the database decides
// overall health; the archive is best effort.
func (s *Service) Check(ctx context.Context) *Report {
	report := &Report{Healthy: true}

	if err := checks.PingDatabase(ctx, s.db); err != nil {
		report.Healthy = false
		report.Database = ComponentStatus{Status: StatusError, Error: err.Error()}
	} else {
		report.Database = ComponentStatus{Status: StatusOK}
	}

	if s.client == nil {
		report.Storage = ComponentStatus{Status: StatusDisabled}
	} else if err := checks.CheckBucket(ctx, s.client, s.bucket); err != nil {
		s.logger.Warn("Archive bucket check failed", zap.Error(err))
		report.Storage = ComponentStatus{Status: StatusError, Error: err.Error()}
	} else {
		report.Storage = ComponentStatus{Status: StatusOK}
	}

	return report
}

// CheckSchema verifies the import tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}
