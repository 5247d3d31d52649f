// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key) with a list of public path prefixes.
//   - rayid: assigns every request a ray id, stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
//
// Both are registered globally in the start command, rayid first.
package middleware
