// Package resolver exposes imported users as a read-only identity resolver.
//
// Lookups by username, wildcard listings and resolver info are cached in an
// expiring LRU. Concurrent misses for the same key share one database query.
// The import service calls Invalidate after every apply, so readers never see a
// namespace older than its last applied snapshot.
//
// # Endpoints
//
//   - GET  /resolvers
//   - GET  /resolvers/:group/:resolver
//   - GET  /resolvers/:group/:resolver/users?username=*
//   - GET  /resolvers/:group/:resolver/users/:username
//   - POST /resolvers/:group/:resolver/check
package resolver
