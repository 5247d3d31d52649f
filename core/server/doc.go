// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure and derived values: the listen address, whether API key
// authentication is enabled, and the request body limit that bounds uploaded
// user snapshots.
package server
