// Package apperr defines the recoverable domain fault taxonomy shared by
// the service layer and the HTTP boundary.
package apperr

import "errors"

// Kind classifies a domain fault.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindValidation       Kind = "validation"
	KindPermissionDenied Kind = "permission_denied"
)

// Error is a caller-recoverable domain fault. Infrastructure errors
// (store failures and the like) are never wrapped in Error; the boundary
// maps them to a generic internal failure instead.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound builds a not-found fault.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a conflict fault.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Validation builds a business-rule rejection, distinct from an
// access-control rejection.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// PermissionDenied builds an access-control rejection.
func PermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

// KindOf returns the fault kind of err, or "" when err is not a domain
// fault.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is a domain fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
