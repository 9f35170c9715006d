package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates messages and turns into a *ValidationError only
// when something was added.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func NewValidationError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IntegrityError reports a constraint conflict: a duplicate unique value or
// a broken foreign key in either direction.
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	return e.Message
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

func permissionDenied(message string) error {
	return fmt.Errorf("%w: %s", ErrPermission, message)
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// translate maps store errors onto the service taxonomy.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &IntegrityError{Message: entity + " already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &IntegrityError{Message: "cross reference: " + entity + " references a missing or still-referenced row", Err: err}
	default:
		return err
	}
}

func IsValidation(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

func IsIntegrity(err error) (*IntegrityError, bool) {
	var integrityErr *IntegrityError
	if errors.As(err, &integrityErr) {
		return integrityErr, true
	}
	return nil, false
}
