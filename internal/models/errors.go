package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness violation.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a single entity invariant violation. Field names
// the offending attribute and Constraint describes the violated rule.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Constraint)
}

// ConflictError reports a uniqueness violation on a specific field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s '%s' is already taken", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// WeakPasswordError reports a rejected registration password.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("weak password: %s", e.Reason)
}

// InvalidEquipmentError reports an equipment reference that cannot be
// attached to a session: the item is absent, owned by another user, or
// retired.
type InvalidEquipmentError struct {
	EquipmentID string
	Reason      string
}

func (e *InvalidEquipmentError) Error() string {
	return fmt.Sprintf("invalid equipment %s: %s", e.EquipmentID, e.Reason)
}

// IsValidation reports whether err is an entity validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
