package fsmhelper

import (
	"maps"

	json "github.com/goccy/go-json"
)

type (
	// Holder is the transaction-scoped record of the most recent outbound
	// call: what was sent, to whom, and the payload that started the
	// transaction. It survives suspension because the facade saves it into
	// the transaction [StateStore] after every batch of updates.
	//
	// The With* setters only touch memory; call [StateStore.SaveHolder] to
	// persist. A Holder carries a [RetryBudget] only when the transaction
	// uses retry semantics.
	Holder struct {
		start    any
		body     any
		service  *Service
		headers  map[string]any
		moduleID string
		retry    *RetryBudget
	}

	// holderJSON is the persisted shape of a Holder.
	holderJSON struct {
		Start    any            `json:"start,omitempty"`
		Body     any            `json:"body,omitempty"`
		Service  *Service       `json:"service,omitempty"`
		Headers  map[string]any `json:"headers,omitempty"`
		ModuleID string         `json:"module_id,omitempty"`
		Retry    *budgetJSON    `json:"retry,omitempty"`
	}

	budgetJSON struct {
		State     BudgetState `json:"state"`
		Remaining int         `json:"remaining"`
	}
)

// NewHolder returns an empty holder without retry bookkeeping.
func NewHolder() *Holder { return &Holder{} }

// Start returns the payload of the start-transaction event.
func (h *Holder) Start() any { return h.start }

// Body returns the body of the last outbound call.
func (h *Holder) Body() any { return h.body }

// Service returns the target of the last outbound call. It is absent after
// a reply, which has no service.
func (h *Holder) Service() (Service, bool) {
	if h.service == nil {
		return Service{}, false
	}

	return *h.service, true
}

// Headers returns the headers of the last outbound call.
func (h *Holder) Headers() map[string]any { return h.headers }

// ModuleID returns the routing constraint of the last remote call.
func (h *Holder) ModuleID() string { return h.moduleID }

// WithStart records the start payload.
func (h *Holder) WithStart(start any) *Holder {
	h.start = start
	return h
}

// WithBody records the outbound body.
func (h *Holder) WithBody(body any) *Holder {
	h.body = body
	return h
}

// WithService records the outbound target.
func (h *Holder) WithService(svc Service) *Holder {
	h.service = &svc
	return h
}

// ClearService forgets the outbound target.
func (h *Holder) ClearService() *Holder {
	h.service = nil
	return h
}

// WithHeaders records the outbound headers.
func (h *Holder) WithHeaders(headers map[string]any) *Holder {
	h.headers = headers
	return h
}

// WithModule records the module routing constraint.
func (h *Holder) WithModule(moduleID string) *Holder {
	h.moduleID = moduleID
	return h
}

// ---------------------------------------------------------------------------
// Retry bookkeeping
// ---------------------------------------------------------------------------

// EnableRetry attaches a not-armed budget if the holder has none.
func (h *Holder) EnableRetry() *Holder {
	if h.retry == nil {
		h.retry = &RetryBudget{}
	}

	return h
}

// Retry returns the retry budget, or nil when retry semantics are off.
func (h *Holder) Retry() *RetryBudget { return h.retry }

// WithRetries arms the budget with n retries, enabling retry semantics.
func (h *Holder) WithRetries(n int) *Holder {
	h.EnableRetry()
	h.retry.Arm(n)

	return h
}

// Retries returns the retries left, or -1 when nothing is budgeted.
func (h *Holder) Retries() int {
	if h.retry == nil {
		return -1
	}

	return h.retry.Retries()
}

// CanRetry reports whether another retry is allowed.
func (h *Holder) CanRetry() bool {
	return h.retry != nil && h.retry.CanRetry()
}

// DecrementRetriesAndGet consumes one retry and returns what is left.
func (h *Holder) DecrementRetriesAndGet() int {
	if h.retry == nil {
		return -1
	}

	return h.retry.Decrement()
}

// Clone returns a copy whose headers map and budget are not shared.
func (h *Holder) Clone() *Holder {
	c := *h
	if h.headers != nil {
		c.headers = maps.Clone(h.headers)
	}

	if h.service != nil {
		svc := *h.service
		c.service = &svc
	}

	if h.retry != nil {
		budget := *h.retry
		c.retry = &budget
	}

	return &c
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// MarshalJSON encodes the holder for engines that snapshot state as JSON.
func (h *Holder) MarshalJSON() ([]byte, error) {
	out := holderJSON{
		Start:    h.start,
		Body:     h.body,
		Service:  h.service,
		Headers:  h.headers,
		ModuleID: h.moduleID,
	}

	if h.retry != nil {
		out.Retry = &budgetJSON{
			State:     h.retry.state,
			Remaining: h.retry.remaining,
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores a holder encoded by MarshalJSON. Start and body
// come back as generic JSON values.
func (h *Holder) UnmarshalJSON(data []byte) error {
	var in holderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err //nolint:wrapcheck // decoder error returned as-is
	}

	*h = Holder{
		start:    in.Start,
		body:     in.Body,
		service:  in.Service,
		headers:  in.Headers,
		moduleID: in.ModuleID,
	}

	if in.Retry != nil {
		h.retry = &RetryBudget{
			state:     in.Retry.State,
			remaining: in.Retry.Remaining,
		}
	}

	return nil
}
