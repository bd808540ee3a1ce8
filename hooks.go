package fsmhelper

// Hooks holds optional callbacks for facade lifecycle events. All fields are
// nil by default; callers set only the hooks they care about. Once
// constructed, a Hooks value must not be mutated; emit methods read the
// function fields without synchronisation.
//
// Pattern: Observer. Decouples call bookkeeping from consumers (metrics,
// alerting) without the facade knowing about them.
type Hooks struct {
	OnCall             func(svc Service, kind CallKind)
	OnNoResponseCall   func(svc Service)
	OnParallelCall     func(n int, kind CallKind)
	OnReply            func()
	OnRetry            func(svc Service, retriesLeft int)
	OnRetriesExhausted func(svc Service)
	OnAbort            func(err error)
	OnFinish           func()
	OnMalformedInput   func(err error)
}

func (h *Hooks) emitCall(svc Service, kind CallKind) {
	if h != nil && h.OnCall != nil {
		h.OnCall(svc, kind)
	}
}

func (h *Hooks) emitNoResponseCall(svc Service) {
	if h != nil && h.OnNoResponseCall != nil {
		h.OnNoResponseCall(svc)
	}
}

func (h *Hooks) emitParallelCall(n int, kind CallKind) {
	if h != nil && h.OnParallelCall != nil {
		h.OnParallelCall(n, kind)
	}
}

func (h *Hooks) emitReply() {
	if h != nil && h.OnReply != nil {
		h.OnReply()
	}
}

func (h *Hooks) emitRetry(svc Service, retriesLeft int) {
	if h != nil && h.OnRetry != nil {
		h.OnRetry(svc, retriesLeft)
	}
}

func (h *Hooks) emitRetriesExhausted(svc Service) {
	if h != nil && h.OnRetriesExhausted != nil {
		h.OnRetriesExhausted(svc)
	}
}

func (h *Hooks) emitAbort(err error) {
	if h != nil && h.OnAbort != nil {
		h.OnAbort(err)
	}
}

func (h *Hooks) emitFinish() {
	if h != nil && h.OnFinish != nil {
		h.OnFinish()
	}
}

func (h *Hooks) emitMalformedInput(err error) {
	if h != nil && h.OnMalformedInput != nil {
		h.OnMalformedInput(err)
	}
}
