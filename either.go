package fsmhelper

import (
	"fmt"
	"reflect"
)

// eitherKind tags which slot of an [Either] is populated.
type eitherKind uint8

const (
	kindEmpty eitherKind = iota
	kindValue
	kindError
)

// Either holds exactly one of a value, an error, or nothing. It replaces
// panics for the failure paths a handler is expected to deal with (bad
// incoming payload, cache miss with the wrong type).
//
// The zero Either is Empty. Either values are immutable once built.
type Either[V, E any] struct {
	value V
	err   E
	kind  eitherKind
}

// Value wraps a successful result.
func Value[V, E any](v V) Either[V, E] {
	return Either[V, E]{value: v, kind: kindValue}
}

// Error wraps a failure.
func Error[V, E any](e E) Either[V, E] {
	return Either[V, E]{err: e, kind: kindError}
}

// Empty returns the shared empty sentinel.
func Empty[V, E any]() Either[V, E] {
	return Either[V, E]{}
}

// OfNullable returns Empty when v is nil (nil interface, pointer, map,
// slice, func or chan) and Value(v) otherwise.
func OfNullable[V, E any](v V) Either[V, E] {
	if isNil(v) {
		return Empty[V, E]()
	}

	return Value[V, E](v)
}

// IsPresent reports whether a value is held.
func (e Either[V, E]) IsPresent() bool { return e.kind == kindValue }

// IsError reports whether an error is held.
func (e Either[V, E]) IsError() bool { return e.kind == kindError }

// IsEmpty reports whether neither slot is populated.
func (e Either[V, E]) IsEmpty() bool { return e.kind == kindEmpty }

// Get returns the held value, or [ErrNoSuchElement].
//
//nolint:ireturn // generic type parameter V, not an interface
func (e Either[V, E]) Get() (V, error) {
	if e.kind != kindValue {
		var zero V
		return zero, fmt.Errorf("%w: no value present", ErrNoSuchElement)
	}

	return e.value, nil
}

// MustGet returns the held value and panics when there is none. Reading an
// absent value is a programming error, not a data error.
//
//nolint:ireturn // generic type parameter V, not an interface
func (e Either[V, E]) MustGet() V {
	v, err := e.Get()
	if err != nil {
		panic("fsmhelper: " + err.Error())
	}

	return v
}

// GetError returns the held error, or [ErrNoSuchElement].
//
//nolint:ireturn // generic type parameter E, not an interface
func (e Either[V, E]) GetError() (E, error) {
	if e.kind != kindError {
		var zero E
		return zero, fmt.Errorf("%w: no error present", ErrNoSuchElement)
	}

	return e.err, nil
}

// Fold calls onValue when a value is held and onError otherwise. Empty goes
// to onError with the zero E.
func (e Either[V, E]) Fold(onValue func(V), onError func(E)) {
	if e.kind == kindValue {
		onValue(e.value)
		return
	}

	onError(e.err)
}

// OnError calls fn only when an error is held.
func (e Either[V, E]) OnError(fn func(E)) {
	if e.kind == kindError {
		fn(e.err)
	}
}

// String renders the Either for logs.
func (e Either[V, E]) String() string {
	switch e.kind {
	case kindValue:
		return fmt.Sprintf("Value(%v)", e.value)
	case kindError:
		return fmt.Sprintf("Error(%v)", e.err)
	default:
		return "Empty"
	}
}

// Map applies fn to the held value. Errors and Empty pass through without
// calling fn; a nil result of fn becomes Empty.
func Map[V, U, E any](e Either[V, E], fn func(V) U) Either[U, E] {
	switch e.kind {
	case kindValue:
		return OfNullable[U, E](fn(e.value))
	case kindError:
		return Error[U, E](e.err)
	default:
		return Empty[U, E]()
	}
}

// FoldWithReturn dispatches to onValue or onError and returns the result.
// Empty goes to onError with the zero E.
//
//nolint:ireturn // generic type parameter R, not an interface
func FoldWithReturn[V, E, R any](
	e Either[V, E],
	onValue func(V) R,
	onError func(E) R,
) R {
	if e.kind == kindValue {
		return onValue(e.value)
	}

	return onError(e.err)
}

// FoldError applies onError to the held error, or fails with
// [ErrNoSuchElement] when there is none.
//
//nolint:ireturn // generic type parameter R, not an interface
func FoldError[V, E, R any](e Either[V, E], onError func(E) R) (R, error) {
	if e.kind != kindError {
		var zero R
		return zero, fmt.Errorf("%w: no error present", ErrNoSuchElement)
	}

	return onError(e.err), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
