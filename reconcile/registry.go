package reconcile

import (
	"sort"
	"sync"
)

// TrackedState is the registry's view of one logical identity.
type TrackedState struct {
	HasAffordance bool `json:"has_affordance"`
	LastEligible  bool `json:"last_eligible"`
}

// Registry tracks, per logical identity, whether an affordance currently
// exists. Entries are created on first sight and never destroyed: page
// identities are finite per session, so growth is bounded by the page view.
//
// Single writer: only the scan mutates the registry, always synchronously
// within one pass. The mutex exists for diagnostic readers on other
// goroutines (the control surface), not for writer contention.
type Registry struct {
	mu     sync.RWMutex
	states map[string]*TrackedState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*TrackedState)}
}

// Observe ensures an entry exists for id and records its eligibility.
func (r *Registry) Observe(id string, eligible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.states[id]
	if st == nil {
		st = &TrackedState{}
		r.states[id] = st
	}
	st.LastEligible = eligible
}

// SetAffordance records whether an affordance exists for id.
func (r *Registry) SetAffordance(id string, has bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.states[id]
	if st == nil {
		st = &TrackedState{}
		r.states[id] = st
	}
	st.HasAffordance = has
}

// Get returns the tracked state for id, and whether it was ever seen.
func (r *Registry) Get(id string) (TrackedState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[id]
	if !ok {
		return TrackedState{}, false
	}
	return *st, true
}

// Len returns the number of identities ever tracked.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// Reset clears all tracked state. For tests and page navigations.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[string]*TrackedState)
}

// Entry pairs an identity with its state, for diagnostics.
type Entry struct {
	ID    string       `json:"id"`
	State TrackedState `json:"state"`
}

// Dump returns a sorted copy of all entries.
func (r *Registry) Dump() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.states))
	for id, st := range r.states {
		out = append(out, Entry{ID: id, State: *st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
