package reconcile

import (
	"sort"
)

// Action represents a single planned mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the record identifier.
	Key string `json:"key"`
}

// Plan contains the three-way diff between a snapshot and the persisted set.
type Plan[R Keyed] struct {
	// Create holds snapshot records whose key is not persisted, in snapshot order.
	Create []R

	// Update holds snapshot records whose key is already persisted, in snapshot order.
	Update []R

	// Delete holds persisted keys missing from the snapshot, sorted.
	Delete []string
}

// Result returns the counts of the plan.
func (p *Plan[R]) Result() Result {
	return Result{
		Created: len(p.Create),
		Updated: len(p.Update),
		Deleted: len(p.Delete),
	}
}

// Upserts returns Create followed by Update. Both are written the same way.
func (p *Plan[R]) Upserts() []R {
	upserts := make([]R, 0, len(p.Create)+len(p.Update))
	upserts = append(upserts, p.Create...)
	upserts = append(upserts, p.Update...)
	return upserts
}

// Empty reports whether applying the plan would not touch the store.
func (p *Plan[R]) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Actions flattens the plan into a list of actions: creates, updates, then deletes.
func (p *Plan[R]) Actions() []Action {
	actions := make([]Action, 0, len(p.Create)+len(p.Update)+len(p.Delete))
	for _, r := range p.Create {
		actions = append(actions, Action{Type: ActionCreate, Key: r.Key()})
	}
	for _, r := range p.Update {
		actions = append(actions, Action{Type: ActionUpdate, Key: r.Key()})
	}
	for _, key := range p.Delete {
		actions = append(actions, Action{Type: ActionDelete, Key: key})
	}
	return actions
}

// BuildPlan partitions the incoming records against the persisted key set.
// Incoming keys are expected to be unique; a repeated key is planned once
// (first occurrence wins).
func BuildPlan[R Keyed](existing map[string]struct{}, incoming []R) *Plan[R] {
	plan := &Plan[R]{}
	seen := make(map[string]struct{}, len(incoming))

	for _, record := range incoming {
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := existing[key]; ok {
			plan.Update = append(plan.Update, record)
		} else {
			plan.Create = append(plan.Create, record)
		}
	}

	for key := range existing {
		if _, ok := seen[key]; !ok {
			plan.Delete = append(plan.Delete, key)
		}
	}

	// Sort deletions for deterministic output
	sort.Strings(plan.Delete)

	return plan
}
