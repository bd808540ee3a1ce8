package fsmhelper

import "time"

// ---------------------------------------------------------------------------
// Engine collaborators
// ---------------------------------------------------------------------------
//
// The orchestration engine owns state dispatch, persistence, event delivery
// and action execution. The facade only sees it through these contracts.

type (
	// Action is an opaque instruction returned to the engine.
	Action any

	// CallKind distinguishes remote calls from sub-transaction calls.
	CallKind uint8

	// CallArgs describes one entry of a parallel call.
	CallArgs struct {
		Message Message
		Target  string
		Timeout time.Duration
		Kind    CallKind
	}

	// ActionFactory builds the engine's Action values.
	ActionFactory interface {
		// RemoteCall calls target and waits up to timeout for the
		// response. An empty moduleID means no routing constraint.
		RemoteCall(
			target string,
			msg Message,
			timeout time.Duration,
			moduleID string,
		) Action
		// RemoteCallNoResponse sends msg to target and does not wait.
		RemoteCallNoResponse(target string, msg Message) Action
		// ScriptCall starts a sub-transaction and waits for its answer.
		ScriptCall(target string, msg Message, timeout time.Duration) Action
		// ParallelCall dispatches every call concurrently.
		ParallelCall(calls []CallArgs) Action
		// Reply answers whoever started the transaction.
		Reply(msg Message) Action
		// RaiseEvent asks the engine to deliver a named custom event.
		RaiseEvent(name string) Action
		// Wait suspends the transaction until timeout elapses.
		Wait(timeout time.Duration) Action
		// Finish ends the transaction successfully.
		Finish() Action
		// Abort ends the transaction with err.
		Abort(err error) Action
	}

	// Message carries headers and a body.
	Message interface {
		Headers() map[string]any
		Body() any
	}

	// MessageFactory builds outbound messages.
	MessageFactory interface {
		NewMessage(headers map[string]any, body any) (Message, error)
	}

	// StateStore is the transaction-local store persisted by the engine
	// across suspensions. The holder is a typed slot next to the dynamic
	// caller-defined entries.
	StateStore interface {
		Get(key string) (any, bool)
		Put(key string, value any)
		// Clear drops every entry, the holder included.
		Clear()
		Holder() (*Holder, bool)
		SaveHolder(h *Holder)
	}

	// Context is what the engine hands a handler for one event.
	Context interface {
		Actions() ActionFactory
		Messages() MessageFactory
		State() StateStore
		Global() GlobalStore
		ServiceName() string
		TransactionID() string
		CurrentState() string
	}
)

// Call kinds.
const (
	CallRemote CallKind = iota
	CallScript
)

// String returns the kind name.
func (k CallKind) String() string {
	if k == CallScript {
		return "script"
	}

	return "remote"
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type (
	// Event is a notification delivered to a handler.
	Event interface {
		EventName() string
	}

	// StartTransaction starts a transaction with the invoker's message.
	StartTransaction struct {
		Msg Message
	}

	// ResponseReceived delivers the answer to an outbound call.
	ResponseReceived struct {
		Msg Message
	}

	// Timeout reports that an awaited response or wait did not arrive.
	Timeout struct{}

	// Custom is an event raised through [ActionFactory.RaiseEvent].
	Custom struct {
		Name string
	}
)

// Event names.
const (
	EventStartTransaction = "start-transaction"
	EventResponseReceived = "response-received"
	EventTimeout          = "timeout"
)

// EventName implements Event.
func (StartTransaction) EventName() string { return EventStartTransaction }

// Message returns the carried message.
func (e StartTransaction) Message() Message { return e.Msg }

// EventName implements Event.
func (ResponseReceived) EventName() string { return EventResponseReceived }

// Message returns the carried message.
func (e ResponseReceived) Message() Message { return e.Msg }

// EventName implements Event.
func (Timeout) EventName() string { return EventTimeout }

// EventName implements Event.
func (e Custom) EventName() string { return e.Name }
