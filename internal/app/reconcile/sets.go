package reconcile

import "sync"

// SetView is the local view of a membership set (pending friend requests,
// friends). Entries are keyed by user id; repeated identical events are
// idempotent no-ops.
type SetView struct {
	mu      sync.Mutex
	state   State
	entries map[string]struct{}
}

// NewSetView returns an empty set view in the Seeding state.
func NewSetView() *SetView {
	return &SetView{
		entries: make(map[string]struct{}),
	}
}

// Seed installs the historical membership and transitions the view to Live.
// Re-seeding merges: ids already present stay present.
func (v *SetView) Seed(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, id := range ids {
		v.entries[id] = struct{}{}
	}
	v.state = Live
}

// Add merges a live addition. It reports whether the view changed.
func (v *SetView) Add(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.entries[id]; ok {
		return false
	}
	v.entries[id] = struct{}{}
	return true
}

// Remove merges a live removal. It reports whether the view changed.
func (v *SetView) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.entries[id]; !ok {
		return false
	}
	delete(v.entries, id)
	return true
}

// Has reports whether id is in the view.
func (v *SetView) Has(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, ok := v.entries[id]
	return ok
}

// Len returns the number of entries in the view.
func (v *SetView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.entries)
}

// IDs returns the ids currently in the view, in unspecified order.
func (v *SetView) IDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, 0, len(v.entries))
	for id := range v.entries {
		out = append(out, id)
	}
	return out
}
