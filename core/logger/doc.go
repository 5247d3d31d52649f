// Package logger builds the zap logger used by the server and the CLI.
//
// Level is parsed with zap.ParseAtomicLevel, so an unknown level is a startup
// error rather than a silent fallback. Format selects the json encoder
// (default) or the console encoder for interactive CLI runs.
//
// Request scoped lines carry the ray id set by the rayid middleware:
//
//	l := logger.WithRayID(log, c)
//	l.Warn("Import rejected", zap.String("namespace", ns.String()))
package logger
