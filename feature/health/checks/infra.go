package checks

import (
	"context"
	"fmt"

	"user-import/core/storage"

	"gorm.io/gorm"
)

// PingDatabase checks that the database answers.
func PingDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// CheckBucket checks that the archive bucket is reachable and exists.
func CheckBucket(ctx context.Context, client storage.Client, bucket string) error {
	if client == nil {
		return fmt.Errorf("storage client is nil")
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	return nil
}
