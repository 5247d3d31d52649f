package userimport

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"user-import/core/database"
	"user-import/core/lock"
	"user-import/core/reconcile"
	"user-import/feature/userimport/parser"
	"user-import/feature/userimport/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testNS = reconcile.Namespace{GroupID: "import_user", Resolver: "user_import"}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Save(ctx context.Context, group, resolver, format string, content []byte) (string, error) {
	args := m.Called(ctx, group, resolver, format, content)
	return args.String(0), args.Error(1)
}

type countingLocker struct {
	lock.Locker
	mu     sync.Mutex
	writes int
	reads  int
}

func (c *countingLocker) Lock(ctx context.Context, key string) (lock.Release, error) {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Locker.Lock(ctx, key)
}

func (c *countingLocker) RLock(ctx context.Context, key string) (lock.Release, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Locker.RLock(ctx, key)
}

func newTestService(t *testing.T, archive Archiver) (*Service, *store.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	st := store.New(db, store.Options{})
	svc := NewService(st, lock.NewLocal(), archive, zap.NewNop(), Config{BcryptCost: bcrypt.MinCost})
	return svc, st, db
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	content, err := os.ReadFile("parser/testdata/" + name)
	require.NoError(t, err)
	return content
}

func passwordRequest(content []byte, dryRun bool) Request {
	return Request{
		Namespace: testNS,
		Content:   content,
		Options:   parser.Options{Format: parser.FormatPassword, Delimiter: ",", QuoteChar: `"`},
		DryRun:    dryRun,
	}
}

func TestImportUsers_Scenario(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	ctx := context.Background()

	report, err := svc.ImportUsers(ctx, passwordRequest(nil, false))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{}, report.Result)
	assert.NotNil(t, report.Warnings)

	content := fixture(t, "def-passwd")
	report, err = svc.ImportUsers(ctx, passwordRequest(content, false))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Created: 24}, report.Result)
	assert.Equal(t, 24, report.Parsed)

	subset := strings.Join(strings.Split(string(content), "\n")[4:], "\n")
	report, err = svc.ImportUsers(ctx, passwordRequest([]byte(subset), false))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Updated: 20, Deleted: 4}, report.Result)

	count, err := st.Count(ctx, testNS)
	require.NoError(t, err)
	assert.Equal(t, int64(20), count)
}

func TestImportUsers_DryRunTwice(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	locker := &countingLocker{Locker: lock.NewLocal()}
	svc.locker = locker
	ctx := context.Background()

	var applied int
	svc.OnApplied(func(reconcile.Namespace) { applied++ })

	for i := 0; i < 2; i++ {
		report, err := svc.ImportUsers(ctx, passwordRequest(fixture(t, "def-passwd"), true))
		require.NoError(t, err)
		assert.Equal(t, reconcile.Result{Created: 24}, report.Result)
		assert.True(t, report.DryRun)
	}

	count, err := st.Count(ctx, testNS)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, applied)
	assert.Equal(t, 2, locker.reads)
	assert.Zero(t, locker.writes)
}

func TestImportUsers_ValidationBeforeStore(t *testing.T) {
	svc, _, db := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"MissingGroup", Request{Namespace: reconcile.Namespace{Resolver: "r"}, Options: parser.Options{Format: parser.FormatPassword}}, "groupid"},
		{"MissingResolver", Request{Namespace: reconcile.Namespace{GroupID: "g"}, Options: parser.Options{Format: parser.FormatPassword}}, "resolver"},
		{"CSVWithoutMapping", Request{Namespace: testNS, Options: parser.Options{Format: parser.FormatCSV}}, "column_mapping"},
		{"UnknownFormat", Request{Namespace: testNS, Options: parser.Options{Format: "ldif"}}, "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportUsers(ctx, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	// Nothing reached the database
	exists, err := database.TableExists(db, store.UserTable)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestImportUsers_UploadLimit(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	svc.cfg.MaxUploadBytes = 10

	_, err := svc.ImportUsers(context.Background(), passwordRequest(fixture(t, "def-passwd"), false))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file", verr.Field)
}

func TestImportUsers_NoValidRecords(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.ImportUsers(context.Background(), passwordRequest([]byte("broken\nalso:broken\n"), false))
	assert.ErrorIs(t, err, ErrNoValidRecords)
}

func TestImportUsers_WarningsDoNotFail(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	report, err := svc.ImportUsers(context.Background(), passwordRequest([]byte("alice:x:1\nbroken\n"), false))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 2, report.Warnings[0].Line)
}

func TestImportUsers_LongPasswordRowIsSkipped(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	ctx := context.Background()

	req := Request{
		Namespace: testNS,
		Content:   []byte("alice,1,short\nbob,2," + strings.Repeat("x", 80) + "\n"),
		Options: parser.Options{
			Format:        parser.FormatCSV,
			ColumnMapping: map[string]int{"username": 0, "userid": 1, "password": 2},
		},
	}

	for _, dryRun := range []bool{true, false} {
		req.DryRun = dryRun
		report, err := svc.ImportUsers(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, reconcile.Result{Created: 1}, report.Result)
		assert.Equal(t, 1, report.Parsed)
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, 2, report.Warnings[0].Line)
	}

	count, err := st.Count(ctx, testNS)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestImportUsers_UnreachableStoreFails(t *testing.T) {
	svc, st, db := newTestService(t, nil)
	ctx := context.Background()
	content, err := os.ReadFile("parser/testdata/def-passwd")
	require.NoError(t, err)
	req := Request{Namespace: testNS, Content: content, Options: parser.Options{Format: parser.FormatPassword}}

	_, err = svc.ImportUsers(ctx, req)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	req.DryRun = true
	report, err := svc.ImportUsers(ctx, req)
	var serr *reconcile.StoreError
	assert.ErrorAs(t, err, &serr)
	assert.Nil(t, report)

	_, err = st.Count(ctx, testNS)
	assert.Error(t, err)
}

func TestImportUsers_HashesCSVPasswords(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	ctx := context.Background()

	req := Request{
		Namespace: testNS,
		Content:   []byte("alice,1,Secret1\nbob,2,\n"),
		Options: parser.Options{
			Format:        parser.FormatCSV,
			ColumnMapping: map[string]int{"username": 0, "userid": 1, "password": 2},
		},
	}

	// A dry run leaves plaintext untouched and stores nothing
	_, err := svc.ImportUsers(ctx, Request{Namespace: req.Namespace, Content: req.Content, Options: req.Options, DryRun: true})
	require.NoError(t, err)

	_, err = svc.ImportUsers(ctx, req)
	require.NoError(t, err)

	alice, err := st.FindByUsername(ctx, testNS, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", alice.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte("Secret1")))

	bob, err := st.FindByUsername(ctx, testNS, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.Password)
}

func TestImportUsers_AppliedHooksAndArchive(t *testing.T) {
	archive := new(mockArchiver)
	svc, _, _ := newTestService(t, archive)
	content := fixture(t, "def-passwd")

	archive.On("Save", mock.Anything, "import_user", "user_import", "password", content).
		Return("imports/import_user/user_import/x.passwd", nil).Once()

	var invalidated []reconcile.Namespace
	svc.OnApplied(func(ns reconcile.Namespace) { invalidated = append(invalidated, ns) })

	_, err := svc.ImportUsers(context.Background(), passwordRequest(content, false))
	require.NoError(t, err)

	assert.Equal(t, []reconcile.Namespace{testNS}, invalidated)
	archive.AssertExpectations(t)
}

func TestImportUsers_ArchiveFailureIsNotFatal(t *testing.T) {
	archive := new(mockArchiver)
	svc, _, _ := newTestService(t, archive)
	archive.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket gone"))

	report, err := svc.ImportUsers(context.Background(), passwordRequest([]byte("alice:x:1\n"), false))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
}

func TestImportUsers_DryRunSkipsArchive(t *testing.T) {
	archive := new(mockArchiver)
	svc, _, _ := newTestService(t, archive)

	_, err := svc.ImportUsers(context.Background(), passwordRequest([]byte("alice:x:1\n"), true))
	require.NoError(t, err)
	archive.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportUsers_ParallelNamespaces(t *testing.T) {
	svc, st, _ := newTestService(t, nil)
	ctx := context.Background()
	content := fixture(t, "def-passwd")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for _, resolver := range []string{"a", "b", "a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := passwordRequest(content, false)
			req.Namespace = reconcile.Namespace{GroupID: "g", Resolver: resolver}
			_, err := svc.ImportUsers(ctx, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, resolver := range []string{"a", "b"} {
		count, err := st.Count(ctx, reconcile.Namespace{GroupID: "g", Resolver: resolver})
		require.NoError(t, err)
		assert.Equal(t, int64(24), count)
	}
}

func TestImportUsers_LockCancelled(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	release, err := svc.locker.Lock(context.Background(), testNS.String())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ImportUsers(ctx, passwordRequest([]byte("alice:x:1\n"), false))
	assert.ErrorIs(t, err, context.Canceled)
}
