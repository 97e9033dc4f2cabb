// Package apperr defines the error kinds returned by the booking core and
// how they surface over HTTP.
package apperr

// Kind is the machine-checkable class of an Error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidSlot     Kind = "invalid_slot"
	KindInvalidState    Kind = "invalid_state"
	KindDuplicateReview Kind = "duplicate_review"
	KindInternal        Kind = "internal"
)

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below. Duplicate reviews and stale approval
// transitions are conflicts as well, so they also match ErrConflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindConflict && (e.Kind == KindDuplicateReview || e.Kind == KindInvalidState)
}

// Sentinels for errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrInvalidSlot     = &Error{Kind: KindInvalidSlot}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrDuplicateReview = &Error{Kind: KindDuplicateReview}
	ErrInternal        = &Error{Kind: KindInternal}
)

func Validation(msg string) error      { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) error    { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }
func InvalidSlot(msg string) error     { return &Error{Kind: KindInvalidSlot, Message: msg} }
func InvalidState(msg string) error    { return &Error{Kind: KindInvalidState, Message: msg} }
func DuplicateReview(msg string) error { return &Error{Kind: KindDuplicateReview, Message: msg} }

// Internal wraps a storage or unexpected failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
