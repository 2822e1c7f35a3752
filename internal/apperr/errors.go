package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers that need to decide how to react to it.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindTimeout      Kind = "timeout"
	KindInternal     Kind = "internal"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is the structured error returned by the store and service layers.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation error"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrTimeout      = &Error{Kind: KindTimeout, Message: "timeout"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, " [%s: %s]", f.Field, f.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Validation reports a single invalid field.
func Validation(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Fields:  []FieldError{{Field: field, Code: "invalid_" + field, Message: message}},
	}
}

// ValidationFields reports several invalid fields at once.
func ValidationFields(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation error", Fields: fields}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Unauthorized(entity string) *Error {
	return &Error{Kind: KindUnauthorized, Message: entity + " belongs to another tenant"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Timeout(op string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: op + " exceeded its deadline", Err: err}
}

func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors that carry none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the field errors attached to a validation error.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
