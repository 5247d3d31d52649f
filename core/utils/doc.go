// Package utils provides loose type conversions used when reading form values,
// JSON column mappings and CLI flags.
package utils
