package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client is the subset of object storage used by the snapshot archive.
type Client interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, name string, content []byte, contentType string) error
	GetObject(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	// ListObjects returns every object below prefix, recursively.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// NewClient creates a Minio backed client. No request is made until first use.
func NewClient(cfg Config) (Client, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioClient{mc: mc, region: cfg.Region}, nil
}

type minioClient struct {
	mc     *minio.Client
	region string
}

func (c *minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return c.mc.BucketExists(ctx, bucket)
}

func (c *minioClient) MakeBucket(ctx context.Context, bucket string) error {
	return c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.region})
}

func (c *minioClient) PutObject(ctx context.Context, bucket, name string, content []byte, contentType string) error {
	_, err := c.mc.PutObject(ctx, bucket, name, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (c *minioClient) GetObject(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	return c.mc.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
}

func (c *minioClient) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}
