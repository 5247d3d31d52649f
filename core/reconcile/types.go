package reconcile

import (
	"fmt"
	"strings"
)

// Namespace is the unit of isolation for reconciliation.
// Two namespaces never interact; a plan is always computed against the
// persisted set of exactly one namespace.
type Namespace struct {
	// GroupID identifies the import group (e.g. "import_user").
	GroupID string `json:"group_id"`

	// Resolver is the name of the resolver backed by the imported users.
	Resolver string `json:"resolver"`
}

// String renders the namespace as "group/resolver". It is also used as lock key.
func (n Namespace) String() string {
	return n.GroupID + "/" + n.Resolver
}

// Validate checks that both parts of the namespace are set.
func (n Namespace) Validate() error {
	if strings.TrimSpace(n.GroupID) == "" {
		return fmt.Errorf("group id is required")
	}
	if strings.TrimSpace(n.Resolver) == "" {
		return fmt.Errorf("resolver name is required")
	}
	return nil
}

// Keyed is implemented by every record the engine can reconcile.
type Keyed interface {
	// Key returns the stable unique identity of the record within a namespace.
	Key() string
}

// Result holds the counts of one reconciliation pass.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// String returns a compact representation for logs and CLI output.
func (r Result) String() string {
	return fmt.Sprintf("created=%d updated=%d deleted=%d", r.Created, r.Updated, r.Deleted)
}

// Options controls reconcile behavior.
type Options struct {
	// DryRun computes the plan without applying it.
	DryRun bool
}

// ActionType represents the type of a planned mutation.
type ActionType string

const (
	// ActionCreate inserts a record that is not persisted yet.
	ActionCreate ActionType = "create"
	// ActionUpdate overwrites a persisted record with the snapshot payload.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a persisted record missing from the snapshot.
	ActionDelete ActionType = "delete"
)

// StoreError reports a failure of the backing store. The store guarantees that
// nothing of a failed ApplyDiff is left visible.
type StoreError struct {
	// Op is the store operation that failed (load, schema, apply).
	Op string
	// Namespace is the namespace being reconciled.
	Namespace Namespace
	// Err is the underlying error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed for %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
