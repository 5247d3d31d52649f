// Package userimport provides the user import feature.
//
// Service.ImportUsers is the single entry point: it validates the request,
// parses the snapshot, takes the namespace lock (exclusive for an apply, shared
// for a dry run), hashes plaintext passwords and reconciles the records into the
// store. A successful apply notifies the OnApplied hooks (the resolver cache) and
// archives the raw snapshot.
//
// # Endpoints
//
//   - POST /tools/import_users: multipart upload, answers with the import report.
//
// Errors map to 400 (validation), 422 (no valid records) and 500 (store).
package userimport
