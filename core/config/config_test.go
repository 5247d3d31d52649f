package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "linotp", cfg.Database.Name)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.Equal(t, 10, cfg.Import.BcryptCost)
	assert.True(t, cfg.Import.Archive)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, 1024, cfg.Cache.Size)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "IMPORT_BATCH_SIZE=50\nDATABASE_DRIVER=sqlite\nLOCK_BACKEND=redis\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("IMPORT_BATCH_SIZE")
		os.Unsetenv("DATABASE_DRIVER")
		os.Unsetenv("LOCK_BACKEND")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Lock.Backend)
}

func TestBindValues(t *testing.T) {
	v := viper.New()
	bindValues(v, Config{}, "")

	assert.True(t, v.IsSet("import.bcrypt_cost"))
	assert.True(t, v.IsSet("cache.ttl_seconds"))
	assert.Equal(t, "30", v.GetString("storage.timeout_seconds"))
}
