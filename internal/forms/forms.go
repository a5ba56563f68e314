// Package forms defines the error taxonomy shared by form-driven mutations:
// per-field validation errors (raised before any statement is issued) and
// persistence errors (the statement was issued and the database rejected it).
package forms

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a form field name to the human-readable messages
// reported against it.
type FieldErrors map[string][]string

// Add appends a message to the given field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has reports whether the field has at least one message.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// ValidationError reports malformed client input. No mutation was attempted.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid input: " + strings.Join(fields, ", ")
}

// PersistenceError reports a storage failure for input that passed
// validation. Single-statement operations make the failed mutation atomic.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
