package fsmhelper

import (
	"fmt"
	"time"
)

// Facade is what a state handler uses to talk to the engine. Each call
// builds the outbound message, records it in the transaction [Holder],
// logs it and returns the engine Action, in that order. If the message
// cannot be built, the holder is left untouched and an abort action is
// returned instead.
//
// A Facade is bound to one event delivery. It is not safe for concurrent
// use; the engine never runs two events of one transaction at once.
type Facade struct {
	ctx         Context
	log         *Logger
	hooks       *Hooks
	onExhausted func(*Facade) Action
	globalTTL   time.Duration
	retry       bool
}

// New binds a facade to the engine context of the current event.
func New(ctx Context, opts ...Option) *Facade {
	var cfg facadeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	log := NewLogger(ctx, cfg.logger)
	log.SetTraffic(cfg.traffic)

	return &Facade{
		ctx:         ctx,
		log:         log,
		hooks:       cfg.hooks,
		onExhausted: cfg.onExhausted,
		globalTTL:   cfg.globalTTL,
	}
}

// Context returns the engine context.
func (f *Facade) Context() Context { return f.ctx }

// Logger returns the transaction logger.
func (f *Facade) Logger() *Logger { return f.log }

// Holder returns the transaction's correlation record, creating and saving
// a fresh one on first access.
func (f *Facade) Holder() *Holder {
	h, ok := f.ctx.State().Holder()
	if ok && h != nil {
		if f.retry && h.Retry() == nil {
			h.EnableRetry()
			f.save(h)
		}

		return h
	}

	h = NewHolder()
	if f.retry {
		h.EnableRetry()
	}

	f.save(h)

	return h
}

func (f *Facade) save(h *Holder) { f.ctx.State().SaveHolder(h) }

// ---------------------------------------------------------------------------
// Outbound calls
// ---------------------------------------------------------------------------

// Call requests a remote call to svc and waits for its response.
func (f *Facade) Call(svc Service, body any, opts ...CallOption) Action {
	cfg := newCallConfig(opts)
	action, _ := f.call(svc, body, cfg.headers, cfg.moduleID)

	return action
}

// call reports false when the message could not be built.
func (f *Facade) call(
	svc Service,
	body any,
	headers map[string]any,
	moduleID string,
) (Action, bool) {
	msg, headers, err := f.newMessage(headers, body)
	if err != nil {
		return f.Abort(err), false
	}

	f.record(&svc, body, headers, moduleID)
	f.log.remoteRequest(svc, moduleID, headers, body)
	f.hooks.emitCall(svc, CallRemote)

	return f.ctx.Actions().RemoteCall(svc.ID, msg, svc.Timeout, moduleID), true
}

// CallNoResponse sends body to svc without waiting for a response. No
// retry state is seeded.
func (f *Facade) CallNoResponse(
	svc Service,
	body any,
	opts ...CallOption,
) Action {
	cfg := newCallConfig(opts)

	msg, headers, err := f.newMessage(cfg.headers, body)
	if err != nil {
		return f.Abort(err)
	}

	f.record(&svc, body, headers, "")
	f.log.remoteRequestNoResponse(svc, headers, body)
	f.hooks.emitNoResponseCall(svc)

	return f.ctx.Actions().RemoteCallNoResponse(svc.ID, msg)
}

// ScriptCall starts the sub-transaction svc and waits for its answer. The
// timeout comes from svc unless [WithTimeout] overrides it.
func (f *Facade) ScriptCall(svc Service, body any, opts ...CallOption) Action {
	cfg := newCallConfig(opts)

	timeout := svc.Timeout
	if cfg.hasTimeout {
		timeout = cfg.timeout
	}

	msg, headers, err := f.newMessage(cfg.headers, body)
	if err != nil {
		return f.Abort(err)
	}

	f.record(&svc, body, headers, "")
	f.log.scriptRequest(svc, timeout, headers, body)
	f.hooks.emitCall(svc, CallScript)

	return f.ctx.Actions().ScriptCall(svc.ID, msg, timeout)
}

// Reply answers the transaction's invoker. The holder forgets the last
// service since a reply has none.
func (f *Facade) Reply(body any, opts ...CallOption) Action {
	cfg := newCallConfig(opts)

	msg, headers, err := f.newMessage(cfg.headers, body)
	if err != nil {
		return f.Abort(err)
	}

	f.record(nil, body, headers, "")
	f.log.outgoingReply(headers, body)
	f.hooks.emitReply()

	return f.ctx.Actions().Reply(msg)
}

// ParallelCall fans out one remote call per (service, body, headers) entry
// and bundles them in a single action. headers may be nil; otherwise all
// three slices must have the same length. A length mismatch yields an
// abort action carrying [ErrIllegalArgument] and builds no message.
//
// The holder ends up describing the last entry only, so retrying after a
// parallel call is not supported.
func (f *Facade) ParallelCall(
	services []Service,
	bodies []any,
	headers []map[string]any,
) Action {
	return f.parallel(CallRemote, services, bodies, headers)
}

// ParallelScriptCall is [Facade.ParallelCall] for sub-transactions.
func (f *Facade) ParallelScriptCall(
	services []Service,
	bodies []any,
	headers []map[string]any,
) Action {
	return f.parallel(CallScript, services, bodies, headers)
}

func (f *Facade) parallel(
	kind CallKind,
	services []Service,
	bodies []any,
	headers []map[string]any,
) Action {
	if len(services) != len(bodies) ||
		(len(headers) != 0 && len(headers) != len(bodies)) {
		return f.Abort(illegalArgument(
			"parallel %s call: %d services, %d bodies, %d headers",
			kind,
			len(services),
			len(bodies),
			len(headers),
		))
	}

	calls := make([]CallArgs, len(services))
	sent := make([]map[string]any, len(services))

	for i, svc := range services {
		var hdr map[string]any
		if len(headers) != 0 {
			hdr = headers[i]
		}

		msg, hdr, err := f.newMessage(hdr, bodies[i])
		if err != nil {
			return f.Abort(err)
		}

		sent[i] = hdr
		calls[i] = CallArgs{
			Kind:    kind,
			Target:  svc.ID,
			Message: msg,
			Timeout: svc.Timeout,
		}
	}

	for i, svc := range services {
		f.record(&svc, bodies[i], sent[i], "")

		if kind == CallScript {
			f.log.scriptRequest(svc, svc.Timeout, sent[i], bodies[i])
		} else {
			f.log.remoteRequest(svc, "", sent[i], bodies[i])
		}
	}

	f.hooks.emitParallelCall(len(calls), kind)

	return f.ctx.Actions().ParallelCall(calls)
}

// ---------------------------------------------------------------------------
// Control actions
// ---------------------------------------------------------------------------

// RaiseEvent asks the engine to deliver the custom event name.
func (f *Facade) RaiseEvent(name string) Action {
	return f.ctx.Actions().RaiseEvent(name)
}

// Wait suspends the transaction for timeout, typically while collecting
// the remaining answers of a parallel call.
func (f *Facade) Wait(timeout time.Duration) Action {
	return f.ctx.Actions().Wait(timeout)
}

// End clears the transaction-local state and finishes the transaction.
func (f *Facade) End() Action {
	f.ctx.State().Clear()
	f.hooks.emitFinish()

	return f.ctx.Actions().Finish()
}

// Abort drives the transaction to a failed terminal state.
func (f *Facade) Abort(err error) Action {
	f.log.Exception("aborting transaction", err)
	f.hooks.emitAbort(err)

	return f.ctx.Actions().Abort(err)
}

// ---------------------------------------------------------------------------
// Message construction
// ---------------------------------------------------------------------------

// newMessage builds the outbound message. nil headers become an empty map.
func (f *Facade) newMessage(
	headers map[string]any,
	body any,
) (Message, map[string]any, error) {
	if headers == nil {
		headers = make(map[string]any)
	}

	msg, err := f.ctx.Messages().NewMessage(headers, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMessageConstruction, err)
	}

	return msg, headers, nil
}

// record stores what was just sent. A nil svc clears the target.
func (f *Facade) record(
	svc *Service,
	body any,
	headers map[string]any,
	moduleID string,
) {
	h := f.Holder()
	if svc == nil {
		h.ClearService()
	} else {
		h.WithService(*svc)
	}

	h.WithBody(body).WithHeaders(headers).WithModule(moduleID)
	f.save(h)
}
