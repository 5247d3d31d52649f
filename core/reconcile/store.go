package reconcile

import "context"

// Store defines the capability interface of a backing store for one record type.
// All methods are scoped to a single namespace.
type Store[R Keyed] interface {
	// EnsureSchema creates the backing schema if it does not exist yet.
	// It is only called before a write.
	EnsureSchema(ctx context.Context, ns Namespace) error

	// LoadExistingKeys returns the keys currently persisted for the namespace.
	// A namespace without any backing schema must yield an empty set, not an error.
	LoadExistingKeys(ctx context.Context, ns Namespace) (map[string]struct{}, error)

	// ApplyDiff upserts plan.Create and plan.Update with their full payload and
	// deletes plan.Delete. It must be atomic: either everything is visible to
	// readers afterwards or nothing is.
	ApplyDiff(ctx context.Context, ns Namespace, plan *Plan[R]) error
}
