package fsmhelper

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error vocabulary
// ---------------------------------------------------------------------------

type (
	// HelperError identifies errors produced by the helper layer itself,
	// as opposed to errors coming from the engine collaborators.
	HelperError interface {
		error
		// IsHelper reports whether this error originates from the helper
		// layer.
		IsHelper() bool
	}

	// InputTypeError reports an incoming message body whose dynamic type
	// is not assignable to the type the handler asked for.
	InputTypeError struct {
		Expected string
		Actual   string
	}

	// TypeMismatchError reports a transaction-local state entry whose
	// stored type differs from the requested one.
	TypeMismatchError struct {
		Key      string
		Expected string
		Actual   string
	}

	// helperError is the concrete type backing all sentinel errors.
	helperError string
)

// Sentinel helper errors.
var (
	// ErrNoSuchElement is returned when reading the value of an Either that
	// holds none, or its error when it holds none.
	ErrNoSuchElement error = helperError("no such element")
	// ErrMalformedInput is the parent of every incoming payload failure.
	ErrMalformedInput error = helperError("malformed input")
	// ErrMissingInput is returned when an event carries no message body.
	ErrMissingInput error = fmt.Errorf(
		"%w: incoming arguments is nil",
		ErrMalformedInput,
	)
	// ErrIllegalArgument is carried by the abort action produced for
	// inconsistent parallel call arguments.
	ErrIllegalArgument error = helperError("illegal argument")
	// ErrStateMissing is returned when a transaction-local key is absent.
	ErrStateMissing error = helperError("state entry is missing")
	// ErrMessageConstruction wraps a message factory failure.
	ErrMessageConstruction error = helperError("message construction failed")
)

func (e helperError) Error() string { return string(e) }

// IsHelper reports whether the error is a helper layer error.
func (helperError) IsHelper() bool { return true }

func (e *InputTypeError) Error() string {
	return "incoming arguments class is incorrect: expected " +
		e.Expected + ", actual " + e.Actual
}

// Unwrap ties the error to [ErrMalformedInput].
func (*InputTypeError) Unwrap() error { return ErrMalformedInput }

// IsHelper reports true.
func (*InputTypeError) IsHelper() bool { return true }

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"state entry %q has type %s, expected %s",
		e.Key,
		e.Actual,
		e.Expected,
	)
}

// IsHelper reports true.
func (*TypeMismatchError) IsHelper() bool { return true }

// IsMalformedInput reports whether err describes a bad incoming payload.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// illegalArgument builds the condition carried by an abort action.
func illegalArgument(format string, args ...any) error {
	return fmt.Errorf(
		"%w: "+format,
		append([]any{ErrIllegalArgument}, args...)...,
	)
}
