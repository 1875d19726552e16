package apperror

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for the HTTP boundary and for callers that need to
// decide whether an action can be retried.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization_error"
	KindConflict      Kind = "conflict"
	KindCooldown      Kind = "cooldown"
	KindTransient     Kind = "transient_store_error"
	KindUpstream      Kind = "upstream_error"
	KindConfiguration Kind = "configuration_error"
	KindInternal      Kind = "internal_error"
)

// Error is the typed error returned by every service in the module.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap returns a copy of base carrying cause. The copy still matches base via errors.Is.
func Wrap(base *Error, cause error) *Error {
	if base == nil {
		return nil
	}
	out := *base
	out.Err = cause
	return &out
}

// WithMessage returns a copy of base with a more specific message.
func WithMessage(base *Error, format string, args ...any) *Error {
	if base == nil {
		return nil
	}
	out := *base
	out.Message = fmt.Sprintf(format, args...)
	return &out
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// KindOf reports the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUnauthenticated = New(KindAuthorization, "unauthenticated", "authentication required")
	ErrForbidden       = New(KindAuthorization, "forbidden", "you are not allowed to perform this action")
	ErrStore           = New(KindTransient, "store_unavailable", "the data store is temporarily unavailable, please retry")
	ErrInternal        = New(KindInternal, "internal_error", "internal error")
)
