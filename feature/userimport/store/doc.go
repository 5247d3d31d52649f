// Package store persists imported users with GORM.
//
// All namespaces share the imported_users table; group_id and resolver are part
// of the primary key, so every query is scoped to one namespace. The table is
// created on the first real import (EnsureSchema). Before that, reads behave as
// if the namespace were empty.
//
// ApplyDiff runs one transaction: batched upserts, batched deletes, and the
// import_resolvers registry row holding the current row count. A failure at any
// step rolls back the whole diff.
package store
