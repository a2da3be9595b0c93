package reconcile

import (
	"sort"
)

// AssociationSet describes a full-replace update of one many-to-many
// relation owned by OwnerID.
type AssociationSet struct {
	Relation   string
	OwnerID    int64
	OwnerIndex int
	Current    []int64
	Submitted  []int64
	Valid      map[int64]bool
}

// Resolve returns the next association set: Submitted, deduplicated, with
// ids outside Valid dropped and reported. changed is false when next equals
// Current as a set.
func (a AssociationSet) Resolve() (next []int64, changed bool, warnings []ReferenceWarning) {
	next = make([]int64, 0, len(a.Submitted))
	seen := make(map[int64]bool, len(a.Submitted))
	for _, id := range a.Submitted {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !a.Valid[id] {
			warnings = append(warnings, ReferenceWarning{Relation: a.Relation, OwnerID: a.OwnerID, Index: a.OwnerIndex, ID: id})
			continue
		}
		next = append(next, id)
	}
	return next, !sameSet(a.Current, next), warnings
}

func sameSet(a, b []int64) bool {
	x := uniqueSorted(a)
	y := uniqueSorted(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func idSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
