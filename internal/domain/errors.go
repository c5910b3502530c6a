package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("already exists")
)

// Business-rule categories. Callers match them with errors.Is; the concrete
// error types below carry the details.
var (
	ErrInvalidRange          = errors.New("invalid time range")
	ErrReferenceViolation    = errors.New("reference violation")
	ErrSchedulingConflict    = errors.New("scheduling conflict")
	ErrDependentRecordsExist = errors.New("dependent records exist")
)

// InvalidRangeError reports malformed or non-positive-duration time input for a field.
type InvalidRangeError struct {
	Field  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// ValidationError is a field-keyed set of reference violations. All violations
// found in one pass are collected so the caller can fix them in one round trip.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasErrors reports whether at least one violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it holds violations, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "reference violation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrReferenceViolation }

// ConflictError reports the bookings a candidate range overlaps in one venue.
type ConflictError struct {
	VenueID   string
	Range     TimeRange
	Conflicts []*ProgramSession
}

func (e *ConflictError) Error() string {
	descr := make([]string, 0, len(e.Conflicts))
	for _, s := range e.Conflicts {
		descr = append(descr, fmt.Sprintf("%q (%s)", s.Title, s.Range()))
	}
	return fmt.Sprintf("scheduling conflict: %s overlaps %s", e.Range, strings.Join(descr, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrSchedulingConflict }

// DependentRecordsError blocks a delete while child records still exist.
type DependentRecordsError struct {
	Resource  string
	Dependent string
	Count     int
}

func (e *DependentRecordsError) Error() string {
	return fmt.Sprintf("cannot delete %s: %d %s still exist", e.Resource, e.Count, e.Dependent)
}

func (e *DependentRecordsError) Unwrap() error { return ErrDependentRecordsExist }
