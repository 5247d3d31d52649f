// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that opens the
// configured dialect and applies sane pool settings.
//
// # Connect
//
// Connect supports three drivers:
//   - mysql: the production default
//   - postgres: via the pgx based GORM driver
//   - sqlite: for local runs and tests (":memory:" or a file path); the pool is
//     limited to one connection so an in-memory database is shared by all queries
//
// # Schema Inspection
//
// TableExists and GetTableColumns are used by the user store (lazy table
// creation) and by the health feature to verify that the imported user table
// matches the expected layout.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "imported_users")
package database
