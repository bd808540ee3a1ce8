package fsmhelper

import (
	"fmt"
	"reflect"
	"time"
)

// Scope is what the generic read helpers need from a facade. Both [Facade]
// and [RetryFacade] satisfy it.
type Scope interface {
	facade() *Facade
}

func (f *Facade) facade() *Facade { return f }

// ---------------------------------------------------------------------------
// Incoming payloads
// ---------------------------------------------------------------------------

// GetInput extracts the body of a start-transaction or response-received
// event as a T. An absent body or one of another type yields an error
// wrapping [ErrMalformedInput]. A start-transaction event also records its
// body as the holder's start payload.
func GetInput[T any](s Scope, ev Event) Either[T, error] {
	f := s.facade()

	body, ok := f.incomingBody(ev)
	if !ok || isNil(body) {
		f.hooks.emitMalformedInput(ErrMissingInput)
		return Error[T, error](ErrMissingInput)
	}

	v, ok := body.(T)
	if !ok {
		err := &InputTypeError{
			Expected: typeName[T](),
			Actual:   fmt.Sprintf("%T", body),
		}
		f.hooks.emitMalformedInput(err)

		return Error[T, error](err)
	}

	f.log.incomingRequest(v)

	return Value[T, error](v)
}

// GetBody returns the raw body of a start-transaction or response-received
// event, or nil for any other event. No type check is made.
func (f *Facade) GetBody(ev Event) any {
	body, _ := f.incomingBody(ev)
	f.log.incomingRequest(body)

	return body
}

func (f *Facade) incomingBody(ev Event) (any, bool) {
	switch e := ev.(type) {
	case StartTransaction:
		return f.startBody(e.Msg)
	case *StartTransaction:
		if e == nil {
			return nil, false
		}

		return f.startBody(e.Msg)
	case ResponseReceived:
		return messageBody(e.Msg)
	case *ResponseReceived:
		if e == nil {
			return nil, false
		}

		return messageBody(e.Msg)
	default:
		return nil, false
	}
}

func (f *Facade) startBody(msg Message) (any, bool) {
	body, ok := messageBody(msg)

	h := f.Holder()
	h.WithStart(body)
	f.save(h)

	return body, ok
}

func messageBody(msg Message) (any, bool) {
	if isNil(msg) {
		return nil, false
	}

	return msg.Body(), true
}

// ---------------------------------------------------------------------------
// Transaction-local state
// ---------------------------------------------------------------------------

// PutToState stores value under key for the current transaction.
func (f *Facade) PutToState(key string, value any) *Facade {
	f.ctx.State().Put(key, value)
	return f
}

// GetFromStateOrDefault returns the entry under key as a T, or def when
// the key is absent, nil or holds another type.
//
//nolint:ireturn // generic type parameter T, not an interface
func GetFromStateOrDefault[T any](s Scope, key string, def T) T {
	raw, ok := s.facade().ctx.State().Get(key)
	if !ok || isNil(raw) {
		return def
	}

	v, ok := raw.(T)
	if !ok {
		return def
	}

	return v
}

// SafelyGetFromState returns the entry under key as a T. Absence yields
// [ErrStateMissing]; another stored type yields a [*TypeMismatchError].
func SafelyGetFromState[T any](s Scope, key string) Either[T, error] {
	raw, ok := s.facade().ctx.State().Get(key)
	if !ok || isNil(raw) {
		return Error[T, error](
			fmt.Errorf("%w: %q", ErrStateMissing, key),
		)
	}

	v, ok := raw.(T)
	if !ok {
		return Error[T, error](&TypeMismatchError{
			Key:      key,
			Expected: typeName[T](),
			Actual:   fmt.Sprintf("%T", raw),
		})
	}

	return Value[T, error](v)
}

// ---------------------------------------------------------------------------
// Global state
// ---------------------------------------------------------------------------

// PutToGlobal stores value under key in the process-wide store for ttl; a
// ttl <= 0 stores it without expiry.
// Concurrent transactions writing the same key race; the last write wins.
func (f *Facade) PutToGlobal(key string, value any, ttl time.Duration) *Facade {
	f.ctx.Global().Set(key, value, ttl)
	return f
}

// PutToGlobalDefault is [Facade.PutToGlobal] with the TTL configured
// through [WithGlobalTTL].
func (f *Facade) PutToGlobalDefault(key string, value any) *Facade {
	return f.PutToGlobal(key, value, f.globalTTL)
}

// GetFromGlobal returns the entry under key from the process-wide store.
func (f *Facade) GetFromGlobal(key string) (any, bool) {
	return f.ctx.Global().Get(key)
}

// GetFromGlobalOrDefault returns the global entry under key as a T, or def
// when it is absent, expired or holds another type.
//
//nolint:ireturn // generic type parameter T, not an interface
func GetFromGlobalOrDefault[T any](s Scope, key string, def T) T {
	raw, ok := s.facade().ctx.Global().Get(key)
	if !ok || isNil(raw) {
		return def
	}

	v, ok := raw.(T)
	if !ok {
		return def
	}

	return v
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
