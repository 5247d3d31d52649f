package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SnapshotPrefix is the root of all archived import snapshots.
const SnapshotPrefix = "imports/"

const snapshotTimeLayout = "20060102T150405Z"

// SnapshotInfo describes one archived snapshot.
type SnapshotInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores raw import snapshots under imports/<group>/<resolver>/.
type Archive struct {
	client Client
	bucket string
	now    func() time.Time
}

// NewArchive creates a snapshot archive on the given bucket.
func NewArchive(client Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket, now: time.Now}
}

// Bucket returns the archive bucket name.
func (a *Archive) Bucket() string {
	return a.bucket
}

// SnapshotDir returns the object prefix for one namespace.
func SnapshotDir(group, resolver string) string {
	return SnapshotPrefix + path.Join(group, resolver) + "/"
}

// EnsureBucket creates the archive bucket when it does not exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Save uploads a snapshot and returns its object name.
func (a *Archive) Save(ctx context.Context, group, resolver, format string, content []byte) (string, error) {
	ext := "csv"
	if format == "password" {
		ext = "passwd"
	}
	name := fmt.Sprintf("%s%s-%s.%s", SnapshotDir(group, resolver), a.now().UTC().Format(snapshotTimeLayout), uuid.NewString(), ext)

	if err := a.client.PutObject(ctx, a.bucket, name, content, "text/plain; charset=utf-8"); err != nil {
		return "", fmt.Errorf("failed to archive snapshot %s: %w", name, err)
	}
	return name, nil
}

// Load reads an archived snapshot fully.
func (a *Archive) Load(ctx context.Context, name string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	return data, nil
}

// List returns the snapshots archived for a namespace, oldest first.
func (a *Archive) List(ctx context.Context, group, resolver string) ([]SnapshotInfo, error) {
	objects, err := a.client.ListObjects(ctx, a.bucket, SnapshotDir(group, resolver))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := []SnapshotInfo{}
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, SnapshotInfo{Name: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	// Names start with a UTC timestamp
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
