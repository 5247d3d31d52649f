// Package reconcile provides the full-set reconciliation engine used to keep a
// persisted record set in line with an authoritative snapshot.
//
// Every snapshot submitted for a namespace is treated as the complete desired
// state of that namespace. The engine therefore works on keys only:
//   - keys present in the snapshot but not persisted are created
//   - keys present in both are updated (unconditionally, no field comparison)
//   - keys persisted but missing from the snapshot are deleted
//
// # Architecture
//
// The engine consists of three parts:
//
// 1. Plan: pure set algebra over record keys (BuildPlan). It never touches storage
// and is deterministic: created and updated records keep snapshot order, deleted
// keys are sorted.
//
// 2. Store: the capability interface a backend implements (EnsureSchema,
// LoadExistingKeys, ApplyDiff). The engine does not know how a store handles
// transactions; it only requires ApplyDiff to be all-or-nothing.
//
// 3. Reconcile: loads the persisted keys, builds the plan and, unless the call is
// a dry-run, applies it. Store failures are reported as *StoreError.
//
// # Usage Example
//
//	ns := reconcile.Namespace{GroupID: "import_user", Resolver: "user_import"}
//	plan, err := reconcile.Reconcile(ctx, store, ns, records, reconcile.Options{DryRun: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(plan.Result())
//
// Callers are responsible for serializing reconciliations of the same namespace
// (see core/lock).
package reconcile
