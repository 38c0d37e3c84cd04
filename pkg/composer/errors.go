package composer

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("composer: validation failed")
	// ErrDuplicateField is matched by every *DuplicateFieldError.
	ErrDuplicateField = errors.New("composer: duplicate field")
	// ErrIncompleteTemplate signals a submit attempt without any fields.
	ErrIncompleteTemplate = errors.New("composer: template needs at least one field")
	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("composer: persistence failed")
	// ErrIndexOutOfRange is returned when an operation targets a missing field.
	ErrIndexOutOfRange = errors.New("composer: field index out of range")
)

// ValidationError reports a builder or draft that is missing a required
// attribute. Attribute uses the wire name (fieldName, fieldLabel, ...). Err
// carries the document validator's error when that is the source.
type ValidationError struct {
	Attribute string
	Reason    string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Attribute == "" {
		return "composer: " + e.Reason
	}
	return fmt.Sprintf("composer: %s %s", e.Attribute, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateFieldError is returned by AddPresetField when the draft already
// holds a field with the preset's name. The draft is left unchanged.
type DuplicateFieldError struct {
	FieldName string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("composer: field %q already exists", e.FieldName)
}

// Is lets errors.Is(err, ErrDuplicateField) match.
func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

// PersistenceError wraps a failed create or update call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("composer: %s template: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
