// Package health exposes liveness and schema checks.
//
// GET /health pings the database and the archive bucket. Only the database
// decides the status code; a missing bucket is reported but the service keeps
// importing without snapshots. GET /health/schema compares the import tables
// with the columns declared on the store models.
package health
