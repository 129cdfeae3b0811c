package querykit

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrResolution is matched by every ResolutionError.
	ErrResolution = errors.New("querykit: accessor resolution failed")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("querykit: validation failed")

	// ErrExecution is matched by every ExecutionError.
	ErrExecution = errors.New("querykit: execution failed")

	// ErrMapping is matched by every MappingError.
	ErrMapping = errors.New("querykit: mapping failed")

	// ErrUnconditional is returned when a DELETE or UPDATE statement has no
	// conditions and would touch every row of the table.
	ErrUnconditional = errors.New("querykit: unconditional statement rejected")

	// ErrNilID is returned when an id-based operation receives a nil or zero id.
	ErrNilID = errors.New("querykit: nil id")

	// ErrInvalidPage is returned for page numbers or page sizes below 1.
	ErrInvalidPage = errors.New("querykit: invalid page")
)

// Kind classifies an error returned by this module.
type Kind uint8

// Error kinds, ordered from the most specific to the most general.
const (
	KindUnknown Kind = iota
	KindResolution
	KindValidation
	KindMapping
	KindExecution
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindValidation:
		return "validation"
	case KindMapping:
		return "mapping"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of the first error in err's chain that belongs to the
// taxonomy. Specific kinds are checked before general ones, so a mapping failure
// raised while executing a query reports KindMapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case IsResolutionError(err):
		return KindResolution
	case IsValidationError(err):
		return KindValidation
	case IsMappingError(err):
		return KindMapping
	case IsExecutionError(err):
		return KindExecution
	default:
		return KindUnknown
	}
}

// ResolutionError is returned when an accessor cannot be traced back to a
// declared field of its entity type.
type ResolutionError struct {
	Entity   string // Entity type name
	Accessor string // Description of the offending accessor
	Err      error  // Underlying cause, optional
}

// Error returns the error string.
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("querykit: cannot resolve accessor %s of %s: %v", e.Accessor, e.Entity, e.Err)
	}
	return fmt.Sprintf("querykit: cannot resolve accessor %s of %s", e.Accessor, e.Entity)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrResolution.
func (e *ResolutionError) Is(err error) bool {
	return err == ErrResolution
}

// NewResolutionError returns a new ResolutionError.
func NewResolutionError(entity, accessor string, err error) *ResolutionError {
	return &ResolutionError{Entity: entity, Accessor: accessor, Err: err}
}

// IsResolutionError returns true if the error is a ResolutionError.
func IsResolutionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ResolutionError
	return errors.As(err, &e)
}

// ValidationError is returned when a caller-supplied invariant is violated.
// It is always raised before any I/O.
type ValidationError struct {
	Name string // Operation or field name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("querykit: invalid %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrValidation.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// NewValidationError returns a new ValidationError.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// Constraint identifies the kind of constraint a store rejected a statement for.
type Constraint uint8

// Constraint kinds.
const (
	ConstraintNone Constraint = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
	ConstraintNotNull
)

// String returns the constraint name.
func (c Constraint) String() string {
	switch c {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign key"
	case ConstraintCheck:
		return "check"
	case ConstraintNotNull:
		return "not null"
	default:
		return "none"
	}
}

// ExecutionError is returned when the underlying store or driver reports a
// failure. The driver error is attached as the cause.
type ExecutionError struct {
	Op         string     // Operation (e.g., "query", "exec", "insert")
	SQL        string     // Statement text
	Constraint Constraint // Violated constraint, if any
	Err        error      // Driver error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	if e.Constraint != ConstraintNone {
		return fmt.Sprintf("querykit: %s: %s constraint failed: %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("querykit: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrExecution.
func (e *ExecutionError) Is(err error) bool {
	return err == ErrExecution
}

// NewExecutionError returns a new ExecutionError.
func NewExecutionError(op, sql string, err error) *ExecutionError {
	return &ExecutionError{Op: op, SQL: sql, Err: err}
}

// IsExecutionError returns true if the error is an ExecutionError.
func IsExecutionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecutionError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error is an ExecutionError caused by a
// constraint violation.
func IsConstraintError(err error) bool {
	var e *ExecutionError
	return errors.As(err, &e) && e.Constraint != ConstraintNone
}

// MappingError is returned when a row value cannot be coerced into the
// target field type of a non-nullable field.
type MappingError struct {
	Entity string // Entity type name
	Field  string // Go field name
	Column string // Column name
	Value  any    // Source value
	Err    error  // Underlying coercion error
}

// Error returns the error string.
func (e *MappingError) Error() string {
	return fmt.Sprintf("querykit: mapping column %q (%T) into %s.%s: %v", e.Column, e.Value, e.Entity, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrMapping.
func (e *MappingError) Is(err error) bool {
	return err == ErrMapping
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during a batch operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "querykit: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("querykit: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
