package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Transports map kinds onto their own status vocabulary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUpstreamNotFound
	KindUpstream
	KindAlreadyExists
	KindNotFound
	KindInvalidID
	KindDeleteFailed
	KindIdempotencyConflict
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindUpstreamNotFound:    "upstream_not_found",
	KindUpstream:            "upstream",
	KindAlreadyExists:       "already_exists",
	KindNotFound:            "not_found",
	KindInvalidID:           "invalid_id",
	KindDeleteFailed:        "delete_failed",
	KindIdempotencyConflict: "idempotency_conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a tagged service failure. Message is safe to show to callers;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func UpstreamNotFound(key string, err error) *Error {
	return newError(KindUpstreamNotFound, err, "creature %s not found upstream", key)
}

func Upstream(key string, err error) *Error {
	return newError(KindUpstream, err, "failed to fetch creature %s upstream", key)
}

func AlreadyExists(name string, err error) *Error {
	return newError(KindAlreadyExists, err, "creature %s is already registered", name)
}

func AlreadyExistsConflict(name, otherID string) *Error {
	return newError(KindAlreadyExists, nil, "creature %s is already registered with another id (%s)", name, otherID)
}

func NotFound(id string, err error) *Error {
	return newError(KindNotFound, err, "creature with id %s not found", id)
}

func InvalidID(id string, err error) *Error {
	return newError(KindInvalidID, err, "invalid id: %s", id)
}

func DeleteFailed(id string, err error) *Error {
	return newError(KindDeleteFailed, err, "failed to delete creature with id %s", id)
}

func IdempotencyConflict(key string, err error) *Error {
	return newError(KindIdempotencyConflict, err, "idempotency key %s conflicts with request", key)
}

func Internal(op string, err error) *Error {
	return newError(KindInternal, err, "%s failed", op)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
