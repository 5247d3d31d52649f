package mocks

import (
	"context"
	"io"

	"user-import/core/storage"

	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of storage.Client.
type Client struct {
	mock.Mock
}

func (m *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucket string) error {
	return m.Called(ctx, bucket).Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucket, name string, content []byte, contentType string) error {
	return m.Called(ctx, bucket, name, content, contentType).Error(0)
}

func (m *Client) GetObject(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, name)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	objs, _ := args.Get(0).([]storage.ObjectInfo)
	return objs, args.Error(1)
}
