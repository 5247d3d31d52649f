// Package lock provides per-namespace locking for user imports.
//
// An apply takes the namespace key exclusively; a dry run takes it shared.
// Different keys never block each other.
//
// Two backends exist:
//   - Local: golang.org/x/sync semaphores, one per key, for a single process.
//   - Redis: SET NX PX with a random token, released by a compare-and-delete
//     script, for several replicas sharing one database. A held lock is
//     renewed every third of its ttl until it is released.
package lock
