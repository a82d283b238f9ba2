package platform

import "fmt"

// ErrorKind classifies domain failures so the HTTP layer can map them to
// statuses without inspecting messages.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindNotOwned     ErrorKind = "NOT_OWNED"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindDuplicate    ErrorKind = "DUPLICATE"
	KindBadRequest   ErrorKind = "BAD_REQUEST"
	KindServerError  ErrorKind = "SERVER_ERROR"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func notFound(what string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: what + " not found"}
}

func notOwned(what string) *DomainError {
	return &DomainError{Kind: KindNotOwned, Message: "actor does not own this " + what}
}

func duplicate(message string) *DomainError {
	return &DomainError{Kind: KindDuplicate, Message: message}
}

func badRequest(message string) *DomainError {
	return &DomainError{Kind: KindBadRequest, Message: message}
}

// serverError wraps a store failure on a write that was already judged
// valid. Per the propagation policy these are surfaced, never retried.
func serverError(err error) *DomainError {
	return &DomainError{Kind: KindServerError, Message: err.Error()}
}

// ErrParentCommentNotFound is distinct from a plain NotFound so callers can
// tell a missing parent reference apart from a missing post.
var ErrParentCommentNotFound = &DomainError{
	Kind:    KindBadRequest,
	Message: "parent comment with provided id not found",
}

// KindOf extracts the kind from an error, defaulting to ServerError for
// anything that is not a DomainError.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return KindServerError
}
