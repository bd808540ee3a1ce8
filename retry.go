package fsmhelper

// Pattern: retry from memory. The handler is stateless between events, so
// a retry replays what the Holder recorded for the last call instead of
// re-deriving the handler's intent.

// RetryFacade adds a retry budget to [Facade]. [RetryFacade.Call] arms the
// budget from the service; [RetryFacade.RetryCall] re-issues the recorded
// call while the budget lasts and falls back to
// [RetryFacade.RetryEndAction] afterwards.
type RetryFacade struct {
	*Facade
}

// NewRetry binds a retry-capable facade to the engine context.
func NewRetry(ctx Context, opts ...Option) *RetryFacade {
	f := New(ctx, opts...)
	f.retry = true

	return &RetryFacade{Facade: f}
}

// Call is [Facade.Call] that also arms the budget with svc.Retries.
func (f *RetryFacade) Call(svc Service, body any, opts ...CallOption) Action {
	cfg := newCallConfig(opts)

	action, ok := f.call(svc, body, cfg.headers, cfg.moduleID)
	if ok {
		h := f.Holder()
		h.WithRetries(svc.Retries)
		f.save(h)
	}

	return action
}

// CallNoResponse is [Facade.CallNoResponse]; it disarms the budget since
// [RetryFacade.RetryCall] only replays calls that await a response.
func (f *RetryFacade) CallNoResponse(
	svc Service,
	body any,
	opts ...CallOption,
) Action {
	action := f.Facade.CallNoResponse(svc, body, opts...)
	f.disarm()

	return action
}

// ScriptCall is [Facade.ScriptCall]; it disarms the budget since a
// sub-transaction is not replayed as a remote call.
func (f *RetryFacade) ScriptCall(
	svc Service,
	body any,
	opts ...CallOption,
) Action {
	action := f.Facade.ScriptCall(svc, body, opts...)
	f.disarm()

	return action
}

// ParallelCall is [Facade.ParallelCall]; it disarms the budget because a
// parallel call cannot be replayed.
func (f *RetryFacade) ParallelCall(
	services []Service,
	bodies []any,
	headers []map[string]any,
) Action {
	action := f.Facade.ParallelCall(services, bodies, headers)
	f.disarm()

	return action
}

// ParallelScriptCall is [Facade.ParallelScriptCall]; it disarms the budget.
func (f *RetryFacade) ParallelScriptCall(
	services []Service,
	bodies []any,
	headers []map[string]any,
) Action {
	action := f.Facade.ParallelScriptCall(services, bodies, headers)
	f.disarm()

	return action
}

// RetryCall re-issues the last recorded call when the budget allows it,
// and returns [RetryFacade.RetryEndAction] otherwise. Typically invoked
// from the handler of a failure or timeout event.
func (f *RetryFacade) RetryCall() Action {
	h := f.Holder()

	svc, ok := h.Service()
	if !ok || !h.CanRetry() {
		return f.RetryEndAction()
	}

	left := h.DecrementRetriesAndGet()
	f.save(h)

	f.log.Info("retrying request", "retries_left", left)
	f.log.retriedRequest(svc, left, h.Headers(), h.Body())
	f.hooks.emitRetry(svc, left)

	action, _ := f.call(svc, h.Body(), h.Headers(), h.ModuleID())

	return action
}

// RetryEndAction is returned once the budget is used up. It finishes the
// transaction unless [OnRetriesExhausted] supplied another action.
func (f *RetryFacade) RetryEndAction() Action {
	f.log.Info("request cannot be retried, attempts exhausted")

	svc, _ := f.Holder().Service()
	f.hooks.emitRetriesExhausted(svc)

	if f.onExhausted != nil {
		return f.onExhausted(f.Facade)
	}

	f.hooks.emitFinish()

	return f.ctx.Actions().Finish()
}

func (f *RetryFacade) disarm() {
	h := f.Holder()
	h.Retry().Disarm()
	f.save(h)
}
