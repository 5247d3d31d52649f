package config

import (
	"reflect"
	"strings"

	"user-import/core/database"
	"user-import/core/lock"
	"user-import/core/logger"
	"user-import/core/server"
	"user-import/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the snapshot archive (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Import holds tuning for the user import pipeline.
	Import ImportConfig `mapstructure:"import"`
	// Lock selects the namespace lock backend.
	Lock lock.Config `mapstructure:"lock"`
	// Cache sizes the resolver read cache.
	Cache CacheConfig `mapstructure:"cache"`
}

// ImportConfig holds tuning for the user import pipeline.
type ImportConfig struct {
	// BatchSize is the number of rows per upsert or delete statement.
	BatchSize int `mapstructure:"batch_size" default:"500"`
	// BcryptCost is the cost used to hash plaintext csv passwords.
	BcryptCost int `mapstructure:"bcrypt_cost" default:"10"`
	// MaxUploadMB caps the accepted snapshot size.
	MaxUploadMB int `mapstructure:"max_upload_mb" default:"16"`
	// Archive enables storing every applied snapshot in object storage.
	Archive bool `mapstructure:"archive" default:"true"`
}

// CacheConfig holds configuration for the resolver read cache.
type CacheConfig struct {
	// Size is the maximum number of cached lookups. Zero disables caching.
	Size int `mapstructure:"size" default:"1024"`
	// TTLSeconds is the lifetime of a cached lookup.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. IMPORT_BATCH_SIZE -> import.batch_size)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
