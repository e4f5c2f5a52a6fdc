// Package errs defines the error kinds surfaced to callers of the dialogue engine.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindUnknownCharacter Kind = "unknown_character"
	KindNotFound         Kind = "not_found"
)

// Error is a caller input error. All engine failures are of this type.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrUnknownCharacter = &Error{Kind: KindUnknownCharacter}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Validation returns a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// UnknownCharacter returns a KindUnknownCharacter error naming the character.
func UnknownCharacter(name string) *Error {
	return &Error{Kind: KindUnknownCharacter, Message: fmt.Sprintf("unknown character %q", name)}
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
