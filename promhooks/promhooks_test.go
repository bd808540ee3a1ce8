package promhooks_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/fsmhelper"
	"github.com/byte4ever/fsmhelper/fsmtest"
	"github.com/byte4ever/fsmhelper/promhooks"
)

var ledger = fsmhelper.Service{
	ID:      "ledger",
	Method:  "post",
	Timeout: time.Second,
	Retries: 1,
}

// counter sums every sample of the family name whose labels include want.
func counter(
	t *testing.T,
	reg *prometheus.Registry,
	name string,
	want map[string]string,
) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var sum float64

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}

		for _, m := range fam.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			match := true

			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}

			if match {
				sum += m.GetCounter().GetValue()
			}
		}
	}

	return sum
}

func TestCallsAndReplies(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := fsmhelper.WithHooks(promhooks.New(reg, "fsm").Hooks())

	f := fsmhelper.New(fsmtest.New(), hooks)
	f.Call(ledger, 1)
	f.ScriptCall(ledger, 2)
	f.CallNoResponse(ledger, 3)
	f.Reply("ok")

	require.InDelta(t, 1, counter(t, reg, "fsm_calls_total",
		map[string]string{"service": "ledger", "kind": "remote"}), 0)
	require.InDelta(t, 1, counter(t, reg, "fsm_calls_total",
		map[string]string{"service": "ledger", "kind": "script"}), 0)
	require.InDelta(t, 1, counter(t, reg, "fsm_no_response_calls_total",
		nil), 0)
	require.InDelta(t, 1, counter(t, reg, "fsm_replies_total", nil), 0)
}

func TestParallelCallCountsEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := fsmhelper.New(fsmtest.New(),
		fsmhelper.WithHooks(promhooks.New(reg, "fsm").Hooks()))

	f.ParallelCall(
		[]fsmhelper.Service{ledger, ledger, ledger},
		[]any{1, 2, 3},
		nil,
	)

	require.InDelta(t, 1, counter(t, reg, "fsm_parallel_calls_total",
		map[string]string{"kind": "remote"}), 0)
	require.InDelta(t, 3, counter(t, reg, "fsm_parallel_call_entries_total",
		map[string]string{"kind": "remote"}), 0)
}

func TestRetryAndExhaustion(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := fsmhelper.WithHooks(promhooks.New(reg, "fsm").Hooks())
	eng := fsmtest.New()

	fsmhelper.NewRetry(eng, hooks).Call(ledger, "req")
	fsmhelper.NewRetry(eng, hooks).RetryCall()
	fsmhelper.NewRetry(eng, hooks).RetryCall()

	require.InDelta(t, 1, counter(t, reg, "fsm_retries_total",
		map[string]string{"service": "ledger"}), 0)
	require.InDelta(t, 1, counter(t, reg, "fsm_retries_exhausted_total",
		map[string]string{"service": "ledger"}), 0)
	require.InDelta(t, 1, counter(t, reg, "fsm_finishes_total", nil), 0)
}

func TestExhaustedWithoutServiceUsesNoneLabel(t *testing.T) {
	reg := prometheus.NewRegistry()

	fsmhelper.NewRetry(fsmtest.New(),
		fsmhelper.WithHooks(promhooks.New(reg, "fsm").Hooks())).RetryCall()

	require.InDelta(t, 1, counter(t, reg, "fsm_retries_exhausted_total",
		map[string]string{"service": "none"}), 0)
}

func TestAbortsAndMalformedInputs(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := fsmhelper.New(fsmtest.New(),
		fsmhelper.WithHooks(promhooks.New(reg, "fsm").Hooks()))

	f.Abort(errors.New("boom"))
	fsmhelper.GetInput[int](f, fsmtest.Start("text"))
	fsmhelper.GetInput[int](f, fsmhelper.Timeout{})

	require.InDelta(t, 1, counter(t, reg, "fsm_aborts_total", nil), 0)
	require.InDelta(t, 2, counter(t, reg, "fsm_malformed_inputs_total", nil), 0)
}

func TestNewPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	promhooks.New(reg, "fsm")

	require.Panics(t, func() { promhooks.New(reg, "fsm") })
}
