package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-import/core/database"
	"user-import/core/storage/mocks"
	"user-import/feature/health/checks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func newApp(t *testing.T, db *gorm.DB, client *mocks.Client) *fiber.App {
	t.Helper()
	var feature *Feature
	if client == nil {
		feature = NewFeature(db, nil, "user-imports", zap.NewNop())
	} else {
		feature = NewFeature(db, client, "user-imports", zap.NewNop())
	}
	assert.Equal(t, "health", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app
}

func getReport(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "user-imports").Return(true, nil)

		var report Report
		code := getReport(t, newApp(t, openDB(t), client), "/health", &report)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, report.Healthy)
		assert.Equal(t, StatusOK, report.Database.Status)
		assert.Equal(t, StatusOK, report.Storage.Status)
	})

	t.Run("Archive Disabled", func(t *testing.T) {
		var report Report
		code := getReport(t, newApp(t, openDB(t), nil), "/health", &report)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, StatusDisabled, report.Storage.Status)
	})

	t.Run("Bucket Error Keeps Service Healthy", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "user-imports").Return(false, errors.New("connection refused"))

		var report Report
		code := getReport(t, newApp(t, openDB(t), client), "/health", &report)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, report.Healthy)
		assert.Equal(t, StatusError, report.Storage.Status)
		assert.Contains(t, report.Storage.Error, "connection refused")
	})

	t.Run("Database Down", func(t *testing.T) {
		db := openDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		var report Report
		code := getReport(t, newApp(t, db, nil), "/health", &report)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.False(t, report.Healthy)
		assert.Equal(t, StatusError, report.Database.Status)
	})
}

func TestHandleSchema(t *testing.T) {
	var report checks.SchemaReport
	code := getReport(t, newApp(t, openDB(t), nil), "/health/schema", &report)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, report.Matched)
	assert.Equal(t, checks.StatusAbsent, report.Tables["imported_users"].Status)
}
