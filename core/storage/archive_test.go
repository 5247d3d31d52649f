package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"user-import/core/storage"
	"user-import/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchive_Save(t *testing.T) {
	client := new(mocks.Client)
	a := storage.NewArchive(client, "bucket")
	storage.SetClock(a, func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })

	client.On("PutObject", mock.Anything, "bucket",
		mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "imports/g1/r1/20260102T030405Z-") && strings.HasSuffix(name, ".passwd")
		}),
		[]byte("a:b:c"), mock.Anything).
		Return(nil)

	name, err := a.Save(context.Background(), "g1", "r1", "password", []byte("a:b:c"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "imports/g1/r1/"))
	client.AssertExpectations(t)
}

func TestArchive_SaveError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("s3 down"))

	_, err := storage.NewArchive(client, "bucket").Save(context.Background(), "g", "r", "csv", []byte("x"))
	assert.ErrorContains(t, err, "s3 down")
}

func TestArchive_Load(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "imports/g/r/a.csv").
		Return(io.NopCloser(strings.NewReader("u,1")), nil)

	data, err := storage.NewArchive(client, "bucket").Load(context.Background(), "imports/g/r/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "u,1", string(data))

	client.On("GetObject", mock.Anything, "bucket", "missing").Return(nil, errors.New("no such key"))
	_, err = storage.NewArchive(client, "bucket").Load(context.Background(), "missing")
	assert.ErrorContains(t, err, "no such key")
}

func TestArchive_List(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", "imports/g/r/").Return([]storage.ObjectInfo{
		{Key: "imports/g/r/20260102T000000Z-b.csv", Size: 2},
		{Key: "imports/g/r/", Size: 0},
		{Key: "imports/g/r/20260101T000000Z-a.csv", Size: 1},
	}, nil)

	list, err := storage.NewArchive(client, "bucket").List(context.Background(), "g", "r")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "imports/g/r/20260101T000000Z-a.csv", list[0].Name)
	assert.Equal(t, int64(2), list[1].Size)
}

func TestArchive_ListEmpty(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", "imports/g/none/").Return(nil, nil)

	list, err := storage.NewArchive(client, "bucket").List(context.Background(), "g", "none")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestArchive_EnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)
		assert.NoError(t, storage.NewArchive(client, "bucket").EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything)
	})

	t.Run("Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "bucket").Return(nil)
		assert.NoError(t, storage.NewArchive(client, "bucket").EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(false, errors.New("dial tcp"))
		assert.ErrorContains(t, storage.NewArchive(client, "bucket").EnsureBucket(context.Background()), "dial tcp")
	})
}
