// Package apperror classifies failures into the outcomes a controller can report.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInternal covers everything not classified below. Its detail never leaves the process.
	KindInternal Kind = iota
	// KindFormat is a request whose body or content type cannot be read at all.
	KindFormat
	// KindValidation is a schema rule rejected on write.
	KindValidation
	// KindNotFound is an id that resolves to no record, including ids that are not valid keys.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Format(message string, err error) *Error {
	return &Error{Kind: KindFormat, Message: message, Err: err}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain; unclassified errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message carried by err, if any.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
