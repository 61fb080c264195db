// Package recon defines the shared failure type for reconciliation
// operations. Every public operation returns either a typed payload or an
// *OpError; collaborator faults are wrapped rather than propagated raw.
package recon

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindBusinessRule Kind = "business_rule"
	KindDependency   Kind = "dependency"
)

// OpError is a structured operation failure: a kind, one or more error
// details, and any warnings gathered before the failure.
type OpError struct {
	Kind     Kind
	Errors   []string
	Warnings []string
	cause    error
}

// Errf builds an OpError with a single formatted detail.
func Errf(kind Kind, format string, args ...any) *OpError {
	return &OpError{Kind: kind, Errors: []string{fmt.Sprintf(format, args...)}}
}

// Fail builds an OpError from a detail list.
func Fail(kind Kind, details []string) *OpError {
	return &OpError{Kind: kind, Errors: details}
}

// Dependency wraps a collaborator error as a dependency failure.
func Dependency(context string, err error) *OpError {
	return &OpError{
		Kind:   KindDependency,
		Errors: []string{fmt.Sprintf("%s: %v", context, err)},
		cause:  err,
	}
}

// WithWarnings attaches warnings and returns the error for chaining.
func (e *OpError) WithWarnings(ws ...string) *OpError {
	e.Warnings = append(e.Warnings, ws...)
	return e
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Errors, "; "))
}

// Unwrap exposes the underlying collaborator error, if any.
func (e *OpError) Unwrap() error {
	return e.cause
}

// As extracts an *OpError from an error chain.
func As(err error) (*OpError, bool) {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind Kind) bool {
	oe, ok := As(err)
	return ok && oe.Kind == kind
}
