// Package filter holds the activity and construction selections of a page
// session.
package filter

import "sort"

type Dimension string

const (
	Activity     Dimension = "activity"
	Construction Dimension = "construction"
)

// State is the current selection. An empty set means no filter on that
// dimension. Not safe for concurrent use; the owning controller serializes
// access.
type State struct {
	activities   map[string]struct{}
	construction map[string]struct{}
}

func New() *State {
	return &State{
		activities:   map[string]struct{}{},
		construction: map[string]struct{}{},
	}
}

// ToggleActivity adds v when absent and removes it when present.
func (s *State) ToggleActivity(v string) { toggle(s.activities, v) }

func (s *State) ToggleConstruction(v string) { toggle(s.construction, v) }

// Toggle dispatches on dimension and reports whether v is selected afterwards.
func (s *State) Toggle(d Dimension, v string) bool {
	switch d {
	case Activity:
		s.ToggleActivity(v)
	case Construction:
		s.ToggleConstruction(v)
	default:
		return false
	}
	return s.Has(d, v)
}

func (s *State) HasActivity(v string) bool {
	_, ok := s.activities[v]
	return ok
}

func (s *State) HasConstruction(v string) bool {
	_, ok := s.construction[v]
	return ok
}

func (s *State) Has(d Dimension, v string) bool {
	switch d {
	case Activity:
		return s.HasActivity(v)
	case Construction:
		return s.HasConstruction(v)
	}
	return false
}

// Passes applies both dimensions conjunctively.
func (s *State) Passes(activity, construction string) bool {
	if len(s.activities) > 0 && !s.HasActivity(activity) {
		return false
	}
	if len(s.construction) > 0 && !s.HasConstruction(construction) {
		return false
	}
	return true
}

type Snapshot struct {
	Activities   []string `json:"activities"`
	Construction []string `json:"construction"`
}

// Snapshot returns both selections sorted.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Activities:   sortedKeys(s.activities),
		Construction: sortedKeys(s.construction),
	}
}

func toggle(set map[string]struct{}, v string) {
	if _, ok := set[v]; ok {
		delete(set, v)
		return
	}
	set[v] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
