package reconcile

import (
	"context"
	"fmt"
)

// Reconcile computes the diff between the incoming snapshot and the persisted set
// of the namespace and applies it unless opts.DryRun is set.
//
// A dry-run never calls EnsureSchema or ApplyDiff, so the store is left exactly
// as if the call never happened. A cancelled context before the apply step
// returns the context error without mutating anything.
func Reconcile[R Keyed](ctx context.Context, store Store[R], ns Namespace, incoming []R, opts Options) (*Plan[R], error) {
	if store == nil {
		return nil, fmt.Errorf("reconcile %s: store is nil", ns)
	}

	// Step 1: load the persisted snapshot
	existing, err := store.LoadExistingKeys(ctx, ns)
	if err != nil {
		return nil, &StoreError{Op: "load", Namespace: ns, Err: err}
	}

	// Step 2: pure set algebra
	plan := BuildPlan(existing, incoming)

	// Step 3: dry-run stops here
	if opts.DryRun {
		return plan, nil
	}

	// Step 4: apply
	return plan, Apply(ctx, store, ns, plan)
}

// Apply writes a previously built plan to the store.
// Even an empty plan is applied so the schema exists after the first real import.
func Apply[R Keyed](ctx context.Context, store Store[R], ns Namespace, plan *Plan[R]) error {
	// Abort before any mutation if the caller gave up
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := store.EnsureSchema(ctx, ns); err != nil {
		return &StoreError{Op: "schema", Namespace: ns, Err: err}
	}

	if err := store.ApplyDiff(ctx, ns, plan); err != nil {
		return &StoreError{Op: "apply", Namespace: ns, Err: err}
	}

	return nil
}
