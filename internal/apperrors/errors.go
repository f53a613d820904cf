package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the use cases and handlers
var (
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("access denied")
	ErrConfigurationMissing = errors.New("accounting configuration missing")
)

// FieldError describes one problem with a row or a field of a structure
type FieldError struct {
	Row     int    `json:"row,omitempty"`
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationError is returned for bad files, schemas or request data
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// NewValidationError builds a ValidationError with optional details
func NewValidationError(message string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// ConflictKind identifies which state conflict occurred
type ConflictKind string

const (
	ConflictDuplicate          ConflictKind = "DUPLICATE"
	ConflictAlreadyReconciled  ConflictKind = "ALREADY_RECONCILED"
	ConflictAlreadyReversed    ConflictKind = "ALREADY_REVERSED"
	ConflictConfigurationInUse ConflictKind = "CONFIGURATION_IN_USE"
	ConflictNotReversible      ConflictKind = "NOT_REVERSIBLE"
	ConflictConcurrentUpdate   ConflictKind = "CONCURRENT_UPDATE"
)

// ConflictError means the operation cannot proceed in the current state of the records
type ConflictError struct {
	Kind    ConflictKind
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is lets errors.Is compare conflicts by kind
func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// NewConflict builds a ConflictError
func NewConflict(kind ConflictKind, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Targets for errors.Is
var (
	ErrAlreadyReconciled  = &ConflictError{Kind: ConflictAlreadyReconciled}
	ErrAlreadyReversed    = &ConflictError{Kind: ConflictAlreadyReversed}
	ErrConfigurationInUse = &ConflictError{Kind: ConflictConfigurationInUse}
	ErrNotReversible      = &ConflictError{Kind: ConflictNotReversible}
	ErrConcurrentUpdate   = &ConflictError{Kind: ConflictConcurrentUpdate}
)

// PersistenceError wraps a failed unit of work
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError unless it already carries a domain error
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var conflict *ConflictError
	var validation *ValidationError
	if errors.As(err, &conflict) || errors.As(err, &validation) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsConflict reports whether err is any ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}
