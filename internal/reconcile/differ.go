package reconcile

import (
	"strings"
)

// Submitted is the identity of one submitted child payload.
type Submitted struct {
	ID   int64
	Name string
}

// Persisted is the identity of one stored child row.
type Persisted struct {
	ID   int64
	Name string
}

type OpKind int

const (
	OpCreate OpKind = iota + 1
	OpUpdate
	// OpAlias updates the row created by an earlier op of the same request.
	OpAlias
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpAlias:
		return "alias"
	}
	return "unknown"
}

// Op is the decision for the submitted payload at Index. ID is set for
// OpUpdate, Alias (the index of the earlier create) for OpAlias.
type Op struct {
	Index int
	Kind  OpKind
	ID    int64
	Alias int
}

// Plan lists one Op per submitted payload, in submission order, and the
// persisted ids no payload claimed.
type Plan struct {
	Ops    []Op
	Delete []int64
}

type DiffOptions struct {
	// DedupeByName makes an id-less payload update a row with the same
	// normalised name instead of creating a duplicate.
	DedupeByName bool
}

// Diff partitions submitted payloads against persisted rows. A payload whose
// id matches a persisted row updates it; any other payload creates a row
// unless the name tie-break applies.
func Diff(submitted []Submitted, persisted []Persisted, opts DiffOptions) Plan {
	byID := make(map[int64]bool, len(persisted))
	byName := make(map[string]int64, len(persisted))
	for _, p := range persisted {
		byID[p.ID] = true
		if n := normaliseName(p.Name); n != "" {
			if _, seen := byName[n]; !seen {
				byName[n] = p.ID
			}
		}
	}

	claimed := make(map[int64]bool, len(persisted))
	createdByName := make(map[string]int)
	plan := Plan{Ops: make([]Op, 0, len(submitted))}

	for i, s := range submitted {
		if s.ID > 0 && byID[s.ID] {
			claimed[s.ID] = true
			plan.Ops = append(plan.Ops, Op{Index: i, Kind: OpUpdate, ID: s.ID})
			continue
		}

		name := normaliseName(s.Name)
		if opts.DedupeByName && name != "" {
			if id, ok := byName[name]; ok {
				claimed[id] = true
				plan.Ops = append(plan.Ops, Op{Index: i, Kind: OpUpdate, ID: id})
				continue
			}
			if first, ok := createdByName[name]; ok {
				plan.Ops = append(plan.Ops, Op{Index: i, Kind: OpAlias, Alias: first})
				continue
			}
			createdByName[name] = i
		}
		plan.Ops = append(plan.Ops, Op{Index: i, Kind: OpCreate})
	}

	for _, p := range persisted {
		if !claimed[p.ID] {
			plan.Delete = append(plan.Delete, p.ID)
		}
	}
	return plan
}

func normaliseName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
