// Package models holds the canonical user record shared by the parsers, the
// store and the import service, together with the row warnings and the
// import report returned to callers.
package models
