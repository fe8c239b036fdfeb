// Package storeerr defines the error taxonomy tangle-index returns to its
// callers (spec.md §7). Each kind carries a fixed severity; errors are never
// recovered locally — every operation returns the first error it hits and
// releases whatever it already acquired (spec.md §5, §7).
package storeerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the taxonomy's error classes.
type Kind string

const (
	// KindOOM indicates an allocation failed. Fatal.
	KindOOM Kind = "OOM"
	// KindNullArgument indicates a required input was absent. Fatal.
	KindNullArgument Kind = "NullArgument"
	// KindInvalidInput indicates a blob width mismatch or unexpected
	// parameter. Major.
	KindInvalidInput Kind = "InvalidInput"
	// KindConnectFail indicates the cluster could not be reached. Major.
	KindConnectFail Kind = "ConnectFail"
	// KindQueryFail indicates the driver reported a non-OK future result.
	// Major.
	KindQueryFail Kind = "QueryFail"
	// KindSyncError is reserved for the ingest collaborator; the core
	// never produces it itself, but downstream callers may wrap one of
	// our errors with it.
	KindSyncError Kind = "SyncError"
)

// Severity classifies how urgently an operator should react to a Kind.
type Severity string

const (
	SeverityFatal Severity = "fatal"
	SeverityMajor Severity = "major"
)

func (k Kind) Severity() Severity {
	switch k {
	case KindOOM, KindNullArgument:
		return SeverityFatal
	default:
		return SeverityMajor
	}
}

// Error is the concrete error type returned by every package in this
// module. It wraps an optional underlying cause so callers can still use
// errors.Is/errors.As against driver-level errors.
type Error struct {
	Kind    Kind
	Op      string // operation or field the error occurred in, e.g. "bundle", "ensure_keyspace"
	Cause   error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is (or wraps) an *Error of the same Kind, so
// errors.Is matches two taxonomy errors by Kind regardless of Op or Cause.
// To test an error against a Kind value, use KindOf.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// NewNullArgument reports a required input that was absent.
func NewNullArgument(field string) error {
	return &Error{Kind: KindNullArgument, Op: field, Message: "required argument is nil"}
}

// NewInvalidInput reports a width mismatch or other malformed parameter.
func NewInvalidInput(field string, want, got int) error {
	return &Error{
		Kind:    KindInvalidInput,
		Op:      field,
		Message: fmt.Sprintf("want %d bytes, got %d", want, got),
	}
}

// NewOOM reports an allocation failure encountered while assembling a result.
func NewOOM(op string) error {
	return &Error{Kind: KindOOM, Op: op, Message: "allocation failed"}
}

// NewConnectFail wraps a driver connection error.
func NewConnectFail(op string, cause error) error {
	return &Error{Kind: KindConnectFail, Op: op, Cause: cause}
}

// NewQueryFail wraps a non-OK future/query result. query is the CQL
// template (not the bound values) so the logged message never contains
// caller data.
func NewQueryFail(query string, cause error) error {
	return &Error{Kind: KindQueryFail, Op: query, Cause: cause}
}

// NewSyncError wraps a downstream ingest synchronization error. The core
// never constructs this itself; it exists so collaborators that compose
// with this package can report through the same taxonomy.
func NewSyncError(op string, cause error) error {
	return &Error{Kind: KindSyncError, Op: op, Cause: cause}
}

// KindOf extracts the Kind from err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
