package fsmhelper

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// ---------------------------------------------------------------------------
// RetryBudget states
// ---------------------------------------------------------------------------

func TestBudgetNotArmed(t *testing.T) {
	var b RetryBudget

	if b.State() != BudgetNotArmed {
		t.Fatalf("State() = %v, want not-armed", b.State())
	}

	if b.Retries() != -1 {
		t.Fatalf("Retries() = %d, want -1", b.Retries())
	}

	if b.CanRetry() {
		t.Fatal("CanRetry() = true on a fresh budget")
	}

	if got := b.Decrement(); got != -1 {
		t.Fatalf("Decrement() on fresh budget = %d, want -1", got)
	}
}

func TestBudgetCountsDownToExhausted(t *testing.T) {
	var b RetryBudget

	b.Arm(2)

	if got := b.Decrement(); got != 1 {
		t.Fatalf("first Decrement() = %d, want 1", got)
	}

	if got := b.Decrement(); got != 0 {
		t.Fatalf("second Decrement() = %d, want 0", got)
	}

	if b.State() != BudgetExhausted || b.CanRetry() {
		t.Fatalf("after two decrements: state %v, CanRetry %v",
			b.State(), b.CanRetry())
	}

	if got := b.Decrement(); got != 0 {
		t.Fatalf("Decrement() on exhausted budget = %d, want 0", got)
	}
}

func TestBudgetArmZeroIsExhausted(t *testing.T) {
	var b RetryBudget

	b.Arm(0)

	if b.State() != BudgetExhausted || b.Retries() != 0 {
		t.Fatalf("Arm(0): state %v, retries %d", b.State(), b.Retries())
	}
}

// ---------------------------------------------------------------------------
// Holder
// ---------------------------------------------------------------------------

func TestHolderWithoutRetryReportsMinusOne(t *testing.T) {
	h := NewHolder()

	if h.Retry() != nil {
		t.Fatal("NewHolder() should carry no retry budget")
	}

	if h.Retries() != -1 || h.CanRetry() {
		t.Fatalf("Retries() = %d, CanRetry() = %v", h.Retries(), h.CanRetry())
	}
}

func TestHolderFluentSetters(t *testing.T) {
	svc := Service{ID: "accounts", Method: "open", Timeout: time.Second}
	h := NewHolder().
		WithStart("start").
		WithService(svc).
		WithBody("body").
		WithHeaders(map[string]any{"k": "v"}).
		WithModule("m1")

	got, ok := h.Service()
	if !ok || got != svc {
		t.Fatalf("Service() = %+v, %v; want %+v, true", got, ok, svc)
	}

	if h.Start() != "start" || h.Body() != "body" || h.ModuleID() != "m1" {
		t.Fatalf("holder = start %v body %v module %q",
			h.Start(), h.Body(), h.ModuleID())
	}

	h.ClearService()

	if _, ok = h.Service(); ok {
		t.Fatal("Service() present after ClearService()")
	}
}

func TestHolderCloneDoesNotShare(t *testing.T) {
	h := NewHolder().
		WithHeaders(map[string]any{"a": 1}).
		WithRetries(3)

	c := h.Clone()
	c.Headers()["a"] = 2
	c.DecrementRetriesAndGet()

	if h.Headers()["a"] != 1 {
		t.Fatal("Clone() shares the headers map")
	}

	if h.Retries() != 3 {
		t.Fatalf("Clone() shares the budget: original retries = %d", h.Retries())
	}
}

func TestHolderJSONRoundTrip(t *testing.T) {
	svc := Service{
		ID:      "remoteApiSample",
		Method:  "doSomeWork",
		Timeout: 10 * time.Second,
		Retries: 3,
	}
	h := NewHolder().
		WithStart("order-1").
		WithService(svc).
		WithBody("payload").
		WithHeaders(map[string]any{"trace": "t1"}).
		WithModule("node-2").
		WithRetries(3)
	h.DecrementRetriesAndGet()

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Holder
	if err = json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	gotSvc, ok := got.Service()
	if !ok || gotSvc != svc {
		t.Fatalf("Service() = %+v, want %+v", gotSvc, svc)
	}

	if got.Start() != "order-1" || got.Body() != "payload" {
		t.Fatalf("start %v body %v", got.Start(), got.Body())
	}

	if got.Headers()["trace"] != "t1" || got.ModuleID() != "node-2" {
		t.Fatalf("headers %v module %q", got.Headers(), got.ModuleID())
	}

	if got.Retries() != 2 || !got.CanRetry() {
		t.Fatalf("Retries() = %d, CanRetry() = %v; want 2, true",
			got.Retries(), got.CanRetry())
	}
}

func TestHolderJSONWithoutRetry(t *testing.T) {
	data, err := json.Marshal(NewHolder().WithBody(1))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Holder
	if err = json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Retry() != nil {
		t.Fatal("round trip invented a retry budget")
	}
}
