package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("authentication required")
)

// FieldViolation describes a single failed field constraint.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError collects field violations. It matches ErrValidation with
// errors.Is.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// OrNil returns nil when no violation was recorded, so callers can
// `return ve.OrNil()` without the typed-nil trap.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the violations keyed by field name, for form rendering.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		if _, seen := out[v.Field]; !seen {
			out[v.Field] = v.Message
		}
	}
	return out
}

// FieldNames lists the violated fields in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Violations))
	for f := range e.Fields() {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
