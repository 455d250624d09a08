// Package showerr defines the error-kind taxonomy of §7: every error that
// crosses a component boundary in the core carries one of these kinds, so
// a transport layer can map it to the right HTTP status without inspecting
// strings.
package showerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Validation covers malformed input: out-of-range recurrence fields,
	// unknown timezones, mixed-timezone RDATE/EXDATE, until+count both
	// set, end < start, unknown enum values.
	Validation Kind = "validation"
	// NotFound is a requested id absent from RelStore.
	NotFound Kind = "not-found"
	// Store is a RelStore infrastructure error (connection, constraint).
	Store Kind = "store"
	// Calendar is a CalStore error: HTTP failure after retries, XML/ICS
	// parse failure, malformed VEVENT.
	Calendar Kind = "calendar"
	// InvariantViolation is invariant 1 broken: a RelStore row with no
	// matching VEVENT, or vice versa.
	InvariantViolation Kind = "invariant-violation"
)

// Error wraps an underlying cause with a Kind, preserved across layer
// boundaries per §7's propagation policy.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with kind, annotated with the operation name op.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a new error of kind from a format string, with no underlying
// cause to wrap.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err, or "" if err does not wrap one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether the first *Error in err's chain (the one KindOf reads)
// has the given kind; kinds of *Errors wrapped further down are not checked.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
