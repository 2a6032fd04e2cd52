package roles

import (
	"errors"
	"fmt"
)

// Kind is the failure class of a role command.
type Kind int

const (
	KindPermissionDenied Kind = iota + 1
	KindNotFound
	KindConflict
	KindInvalidInput
	KindRemoteFailure
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindRemoteFailure:
		return "remote_failure"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Reason narrows a Kind.
type Reason string

const (
	ReasonBot       Reason = "bot"
	ReasonActor     Reason = "actor"
	ReasonHierarchy Reason = "hierarchy"

	ReasonUser Reason = "user"
	ReasonRole Reason = "role"

	ReasonAlreadyOwns  Reason = "alreadyOwns"
	ReasonNameTaken    Reason = "nameTaken"
	ReasonOwnedByOther Reason = "ownedByOther"

	ReasonColor             Reason = "color"
	ReasonMissingName       Reason = "missingName"
	ReasonGradientSameColor Reason = "gradientSameColor"
	ReasonUsage             Reason = "usage"
)

// GenericFailure is shown for failures whose details must not reach the user.
const GenericFailure = "❌ Command error."

// Error is a role command failure carrying the reply shown to the user.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Kind, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the reply for this failure. Storage failures stay generic.
func (e *Error) UserMessage() string {
	if e.Kind == KindStorageFailure {
		return GenericFailure
	}
	return e.Message
}

// Is reports whether err is a role Error of the given kind and reason.
// An empty reason matches any reason.
func Is(err error, kind Kind, reason Reason) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind && (reason == "" || e.Reason == reason)
}

func denied(reason Reason, format string, args ...any) *Error {
	return &Error{Kind: KindPermissionDenied, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func notFound(reason Reason, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func conflict(reason Reason, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func invalid(reason Reason, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func remoteFailure(err error, format string, args ...any) *Error {
	return &Error{Kind: KindRemoteFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func storageFailure(err error) *Error {
	return &Error{Kind: KindStorageFailure, Message: "ledger update failed", Err: err}
}
