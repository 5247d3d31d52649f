// Package config provides configuration management for the user import service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, body limit)
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the snapshot archive bucket
//   - Log: Logging level and format
//   - Import: batch size, bcrypt cost, upload cap, archive switch
//   - Lock: namespace lock backend (local or redis)
//   - Cache: resolver read cache size and TTL
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.BatchSize)
package config
