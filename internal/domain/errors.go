package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
)

// ErrorKind classifies engine errors for transport mapping.
type ErrorKind string

const (
	KindInvalidRequest  ErrorKind = "invalid_request"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindNotFound        ErrorKind = "not_found"
	KindEligibility     ErrorKind = "eligibility"
	KindConflict        ErrorKind = "conflict"
	KindExternalFailure ErrorKind = "external_failure"
)

// Error carries a kind plus a human-readable reason that is safe to surface
// verbatim to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Fields)
	}
	return e.Message
}

// Invalid builds an InvalidRequest error.
func Invalid(msg string, fields ...string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg, Fields: fields}
}

// NotFoundErr builds a NotFound error for a named entity.
func NotFoundErr(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Eligibility builds a coupon eligibility failure.
func Eligibility(msg string) *Error {
	return &Error{Kind: KindEligibility, Message: msg}
}

// External wraps a provider failure that must be surfaced.
func External(msg string) *Error {
	return &Error{Kind: KindExternalFailure, Message: msg}
}

// KindOf extracts the ErrorKind from err, defaulting to ExternalFailure for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrAlreadyExists) {
		return KindConflict
	}
	return KindExternalFailure
}
