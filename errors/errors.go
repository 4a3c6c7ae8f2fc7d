// Package errors provides error handling for namedargs.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for users
//
// Usage:
//
//	// Wrap with context
//	if err := sink.Write(ctx, unit); err != nil {
//	    return errors.Wrapf(err, "write %s", unit.Key)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "rename one of the functions")
//
//	// Check errors
//	if errors.Is(err, errors.ErrCollision) {
//	    // two units resolved to the same key
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var (
	AssertionFailedf   = crdb.AssertionFailedf
	IsAssertionFailure = crdb.IsAssertionFailure
)

// Sentinel errors. Wrap these with errors.Wrap() to add context while preserving
// the type for errors.Is().
var (
	// ErrUnsupportedKind marks a callable kind with no defined forwarding target
	// (static, anonymous, lambda).
	ErrUnsupportedKind = New("unsupported callable kind")

	// ErrCollision indicates two generated units resolved to the same (package, carrier) key
	ErrCollision = New("generated artifact collision")

	// ErrUnboundTypeVariable indicates a type variable that is not in lexical scope
	ErrUnboundTypeVariable = New("unbound type variable")

	// ErrEmptyTypeName indicates a type expression without a name
	ErrEmptyTypeName = New("empty type name")

	// ErrUnresolvedType indicates a type reference the collector could not resolve
	ErrUnresolvedType = New("unresolved type")

	// ErrDeferred indicates declarations were handed back as not yet resolvable
	ErrDeferred = New("declarations deferred")

	// ErrIncompatibleManifest indicates a manifest requires a different generator version
	ErrIncompatibleManifest = New("incompatible manifest")
)

// IsCollision checks if an error is or wraps ErrCollision
func IsCollision(err error) bool {
	return err != nil && Is(err, ErrCollision)
}

// IsUnsupported checks if an error is or wraps ErrUnsupportedKind
func IsUnsupported(err error) bool {
	return err != nil && Is(err, ErrUnsupportedKind)
}

// NewCollision creates a collision error for the given key description
func NewCollision(format string, args ...interface{}) error {
	return Wrap(ErrCollision, Newf(format, args...).Error())
}
