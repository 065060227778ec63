package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindAccessDenied     Kind = "access_denied"
	KindValidation       Kind = "validation_failed"
	KindOrderingConflict Kind = "ordering_conflict"
)

// Error is a classified failure surfaced to API callers.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindOrderingConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func AccessDenied(reason string) *Error {
	return &Error{Kind: KindAccessDenied, Message: reason}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func OrderingConflict(err error) *Error {
	return &Error{Kind: KindOrderingConflict, Message: "concurrent reordering conflict, please retry", Err: err}
}

// NotFoundIfMissing converts gorm.ErrRecordNotFound into a NotFound error and
// passes any other error through unchanged.
func NotFoundIfMissing(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := NotFound(entity, id)
		e.Err = err
		return e
	}
	return err
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
