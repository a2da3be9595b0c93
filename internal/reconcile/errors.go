package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target project does not exist.
	ErrNotFound = errors.New("project not found")
	// ErrConflict is wrapped by stores when a unique constraint rejects a write.
	ErrConflict = errors.New("unique constraint violation")
)

type ErrorKind string

const (
	KindShape    ErrorKind = "shape"
	KindCoercion ErrorKind = "coercion"
)

// ParentIndex marks a ValidationError raised for the project itself.
const ParentIndex = -1

// ValidationError identifies the field (and child element) a request was
// rejected for. It always aborts the whole request.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Child   string    `json:"child,omitempty"`
	Index   int       `json:"index"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	loc := "project"
	if e.Child != "" {
		loc = fmt.Sprintf("%s[%d]", e.Child, e.Index)
	}
	if e.Field != "" {
		loc += "." + e.Field
	}
	return fmt.Sprintf("%s error at %s: %s", e.Kind, loc, e.Message)
}

func shapeError(child string, index int, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: KindShape, Child: child, Index: index, Field: field, Message: fmt.Sprintf(format, args...)}
}

func coercionError(child string, index int, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: KindCoercion, Child: child, Index: index, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConstraintError reports a uniqueness violation raised by the store.
type ConstraintError struct {
	Entity string
	Err    error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation on %s: %v", e.Entity, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func asConstraint(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) {
		var ce *ConstraintError
		if errors.As(err, &ce) {
			return err
		}
		return &ConstraintError{Entity: entity, Err: err}
	}
	return err
}

// ReferenceWarning records an association id that did not resolve and was
// dropped.
type ReferenceWarning struct {
	Relation string `json:"relation"`
	OwnerID  int64  `json:"owner_id,omitempty"`
	Index    int    `json:"index"`
	ID       int64  `json:"id"`
}

func (w ReferenceWarning) String() string {
	return fmt.Sprintf("%s: id %d does not exist", w.Relation, w.ID)
}
