// Package fsmtest provides an in-memory stand-in for the orchestration
// engine so handlers built on fsmhelper can be exercised without one.
// Actions are recorded as plain structs that tests can type-switch on.
package fsmtest

import (
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/byte4ever/fsmhelper"
)

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

type (
	// RemoteCall is built by ActionFactory.RemoteCall.
	RemoteCall struct {
		Message  fsmhelper.Message
		Target   string
		ModuleID string
		Timeout  time.Duration
	}

	// RemoteCallNoResponse is built by ActionFactory.RemoteCallNoResponse.
	RemoteCallNoResponse struct {
		Message fsmhelper.Message
		Target  string
	}

	// ScriptCall is built by ActionFactory.ScriptCall.
	ScriptCall struct {
		Message fsmhelper.Message
		Target  string
		Timeout time.Duration
	}

	// ParallelCall is built by ActionFactory.ParallelCall.
	ParallelCall struct {
		Calls []fsmhelper.CallArgs
	}

	// Reply is built by ActionFactory.Reply.
	Reply struct {
		Message fsmhelper.Message
	}

	// RaiseEvent is built by ActionFactory.RaiseEvent.
	RaiseEvent struct {
		Name string
	}

	// Wait is built by ActionFactory.Wait.
	Wait struct {
		Timeout time.Duration
	}

	// Finish is built by ActionFactory.Finish.
	Finish struct{}

	// Abort is built by ActionFactory.Abort.
	Abort struct {
		Err error
	}
)

// Actions records every action it builds.
type Actions struct {
	built []fsmhelper.Action
}

// Built returns the actions built so far, oldest first.
func (a *Actions) Built() []fsmhelper.Action { return a.built }

func (a *Actions) add(act fsmhelper.Action) fsmhelper.Action {
	a.built = append(a.built, act)
	return act
}

// RemoteCall implements fsmhelper.ActionFactory.
func (a *Actions) RemoteCall(
	target string,
	msg fsmhelper.Message,
	timeout time.Duration,
	moduleID string,
) fsmhelper.Action {
	return a.add(RemoteCall{
		Target:   target,
		Message:  msg,
		Timeout:  timeout,
		ModuleID: moduleID,
	})
}

// RemoteCallNoResponse implements fsmhelper.ActionFactory.
func (a *Actions) RemoteCallNoResponse(
	target string,
	msg fsmhelper.Message,
) fsmhelper.Action {
	return a.add(RemoteCallNoResponse{Target: target, Message: msg})
}

// ScriptCall implements fsmhelper.ActionFactory.
func (a *Actions) ScriptCall(
	target string,
	msg fsmhelper.Message,
	timeout time.Duration,
) fsmhelper.Action {
	return a.add(ScriptCall{Target: target, Message: msg, Timeout: timeout})
}

// ParallelCall implements fsmhelper.ActionFactory.
func (a *Actions) ParallelCall(calls []fsmhelper.CallArgs) fsmhelper.Action {
	return a.add(ParallelCall{Calls: calls})
}

// Reply implements fsmhelper.ActionFactory.
func (a *Actions) Reply(msg fsmhelper.Message) fsmhelper.Action {
	return a.add(Reply{Message: msg})
}

// RaiseEvent implements fsmhelper.ActionFactory.
func (a *Actions) RaiseEvent(name string) fsmhelper.Action {
	return a.add(RaiseEvent{Name: name})
}

// Wait implements fsmhelper.ActionFactory.
func (a *Actions) Wait(timeout time.Duration) fsmhelper.Action {
	return a.add(Wait{Timeout: timeout})
}

// Finish implements fsmhelper.ActionFactory.
func (a *Actions) Finish() fsmhelper.Action {
	return a.add(Finish{})
}

// Abort implements fsmhelper.ActionFactory.
func (a *Actions) Abort(err error) fsmhelper.Action {
	return a.add(Abort{Err: err})
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// ErrInjected is returned by Messages when Fail is set.
var ErrInjected = errors.New("fsmtest: injected message failure")

type (
	// Message is a plain headers+body pair.
	Message struct {
		headers map[string]any
		body    any
	}

	// Messages builds Message values and counts them.
	Messages struct {
		// Fail makes NewMessage return ErrInjected.
		Fail bool

		built int
	}
)

// NewMsg builds a message directly, for feeding events to handlers.
func NewMsg(headers map[string]any, body any) *Message {
	return &Message{headers: headers, body: body}
}

// Headers implements fsmhelper.Message.
func (m *Message) Headers() map[string]any { return m.headers }

// Body implements fsmhelper.Message.
func (m *Message) Body() any { return m.body }

// NewMessage implements fsmhelper.MessageFactory.
func (m *Messages) NewMessage(
	headers map[string]any,
	body any,
) (fsmhelper.Message, error) {
	if m.Fail {
		return nil, ErrInjected
	}

	m.built++

	return NewMsg(headers, body), nil
}

// Built returns how many messages were constructed.
func (m *Messages) Built() int { return m.built }

// ---------------------------------------------------------------------------
// Transaction state
// ---------------------------------------------------------------------------

// State is a transaction-local store. SaveHolder keeps a copy, so holder
// changes are only visible after they are saved, as with a real engine
// that serialises state between events.
type State struct {
	data   map[string]any
	holder *fsmhelper.Holder
	saves  int
}

// NewState returns an empty store.
func NewState() *State {
	return &State{data: make(map[string]any)}
}

// Get implements fsmhelper.StateStore.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Put implements fsmhelper.StateStore.
func (s *State) Put(key string, value any) { s.data[key] = value }

// Clear implements fsmhelper.StateStore.
func (s *State) Clear() {
	clear(s.data)
	s.holder = nil
}

// Holder implements fsmhelper.StateStore.
func (s *State) Holder() (*fsmhelper.Holder, bool) {
	if s.holder == nil {
		return nil, false
	}

	return s.holder.Clone(), true
}

// SaveHolder implements fsmhelper.StateStore.
func (s *State) SaveHolder(h *fsmhelper.Holder) {
	s.holder = h.Clone()
	s.saves++
}

// Len returns the number of dynamic entries.
func (s *State) Len() int { return len(s.data) }

// Entries returns a copy of the dynamic entries.
func (s *State) Entries() map[string]any { return maps.Clone(s.data) }

// Saves returns how many times the holder was saved.
func (s *State) Saves() int { return s.saves }

// ---------------------------------------------------------------------------
// Global store
// ---------------------------------------------------------------------------

type (
	// Global is a map-backed global store with per-entry expiry driven by
	// the Now function, so tests can move time forward.
	Global struct {
		entries map[string]globalEntry
		now     func() time.Time
		mu      sync.Mutex
	}

	globalEntry struct {
		expires time.Time
		value   any
	}
)

// NewGlobal returns an empty store. A nil now uses time.Now.
func NewGlobal(now func() time.Time) *Global {
	if now == nil {
		now = time.Now
	}

	return &Global{entries: make(map[string]globalEntry), now: now}
}

// Get implements fsmhelper.GlobalStore.
func (g *Global) Get(key string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		return nil, false
	}

	if !e.expires.IsZero() && !g.now().Before(e.expires) {
		delete(g.entries, key)
		return nil, false
	}

	return e.value, true
}

// Set implements fsmhelper.GlobalStore. A ttl <= 0 never expires.
func (g *Global) Set(key string, value any, ttl time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e := globalEntry{value: value}
	if ttl > 0 {
		e.expires = g.now().Add(ttl)
	}

	g.entries[key] = e
}

// Delete implements fsmhelper.GlobalStore.
func (g *Global) Delete(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine implements fsmhelper.Context for one transaction.
type Engine struct {
	ActionLog   *Actions
	MessageLog  *Messages
	StateStore  *State
	GlobalStore fsmhelper.GlobalStore
	Service     string
	TxID        string
	StateName   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithGlobal shares a global store between engines.
func WithGlobal(g fsmhelper.GlobalStore) Option {
	return func(e *Engine) { e.GlobalStore = g }
}

// WithService sets the script name reported in logs.
func WithService(name string) Option {
	return func(e *Engine) { e.Service = name }
}

// InState sets the current state name.
func InState(name string) Option {
	return func(e *Engine) { e.StateName = name }
}

// New returns an engine for a fresh transaction with a random id.
func New(opts ...Option) *Engine {
	e := &Engine{
		ActionLog:  &Actions{},
		MessageLog: &Messages{},
		StateStore: NewState(),
		Service:    "fsmtest",
		TxID:       uuid.NewString(),
		StateName:  "initial",
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.GlobalStore == nil {
		e.GlobalStore = NewGlobal(nil)
	}

	return e
}

// Actions implements fsmhelper.Context.
func (e *Engine) Actions() fsmhelper.ActionFactory { return e.ActionLog }

// Messages implements fsmhelper.Context.
func (e *Engine) Messages() fsmhelper.MessageFactory { return e.MessageLog }

// State implements fsmhelper.Context.
func (e *Engine) State() fsmhelper.StateStore { return e.StateStore }

// Global implements fsmhelper.Context.
func (e *Engine) Global() fsmhelper.GlobalStore { return e.GlobalStore }

// ServiceName implements fsmhelper.Context.
func (e *Engine) ServiceName() string { return e.Service }

// TransactionID implements fsmhelper.Context.
func (e *Engine) TransactionID() string { return e.TxID }

// CurrentState implements fsmhelper.Context.
func (e *Engine) CurrentState() string { return e.StateName }

// Enter moves the transaction to state name, as the engine would between
// events.
func (e *Engine) Enter(name string) { e.StateName = name }

// Start builds a start-transaction event carrying body.
func Start(body any) fsmhelper.StartTransaction {
	return fsmhelper.StartTransaction{Msg: NewMsg(map[string]any{}, body)}
}

// Response builds a response-received event carrying body.
func Response(body any) fsmhelper.ResponseReceived {
	return fsmhelper.ResponseReceived{Msg: NewMsg(map[string]any{}, body)}
}
