package reconcile

import (
	"errors"
	"sort"
	"strings"
)

// Field declares one accepted key of an entity payload. A field with no Set
// and not ReadOnly is a signal consumed by the reconciler itself.
type Field[T any] struct {
	Name     string
	Kind     Kind
	Choices  []string
	Required bool
	ReadOnly bool
	Set      func(*T, any)
}

// FieldTable is the allow-list of keys accepted for one entity type. Unknown
// keys are rejected; read-only keys are accepted and ignored.
type FieldTable[T any] struct {
	entity string
	fields []Field[T]
	index  map[string]int
}

func NewFieldTable[T any](entity string, fields ...Field[T]) *FieldTable[T] {
	t := &FieldTable[T]{entity: entity, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		t.index[f.Name] = i
	}
	return t
}

// readOnly builds tolerated keys.
func readOnly[T any](names ...string) []Field[T] {
	out := make([]Field[T], len(names))
	for i, n := range names {
		out[i] = Field[T]{Name: n, ReadOnly: true}
	}
	return out
}

// Patch holds the coerced values of one payload.
type Patch[T any] struct {
	table  *FieldTable[T]
	values map[string]any
}

// Coerce validates raw against the table. child and index locate the payload
// in error reports; use "" and ParentIndex for the aggregate root.
func (t *FieldTable[T]) Coerce(child string, index int, raw map[string]any) (Patch[T], error) {
	p := Patch[T]{table: t, values: make(map[string]any, len(raw))}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		i, ok := t.index[key]
		if !ok {
			return p, shapeError(child, index, key, "unknown field for %s", t.entity)
		}
		f := t.fields[i]
		if f.ReadOnly {
			continue
		}
		v, err := Coerce(f.Kind, raw[key], f.Choices)
		if err != nil {
			var cf *coerceFailure
			if errors.As(err, &cf) {
				return p, &ValidationError{Kind: cf.kind, Child: child, Index: index, Field: key, Message: cf.msg}
			}
			return p, err
		}
		if f.Required && isBlank(v) {
			return p, shapeError(child, index, key, "may not be empty")
		}
		p.values[key] = v
	}
	return p, nil
}

// CheckRequired reports the first required field missing from p. It runs
// only for payloads that create a row.
func (p Patch[T]) CheckRequired(child string, index int) error {
	for _, f := range p.table.fields {
		if !f.Required {
			continue
		}
		if v, ok := p.values[f.Name]; !ok || isBlank(v) {
			return shapeError(child, index, f.Name, "is required")
		}
	}
	return nil
}

// Apply runs the setters of every present field, in table order.
func (p Patch[T]) Apply(dst *T) {
	if p.table == nil {
		return
	}
	for _, f := range p.table.fields {
		if f.Set == nil {
			continue
		}
		if v, ok := p.values[f.Name]; ok {
			f.Set(dst, v)
		}
	}
}

func (p Patch[T]) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p Patch[T]) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p Patch[T]) Int64(name string) int64 {
	n, _ := p.values[name].(int64)
	return n
}

func (p Patch[T]) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

func (p Patch[T]) Text(name string) string {
	s, _ := p.values[name].(string)
	return s
}

// IDs returns the id list under name, or nil when the key was omitted or
// null.
func (p Patch[T]) IDs(name string) []int64 {
	ids, _ := p.values[name].([]int64)
	return ids
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
