// Package promhooks exports fsmhelper lifecycle events as Prometheus
// counters. Build one Metrics per process and hand its Hooks to every
// facade.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/byte4ever/fsmhelper"
)

// Metrics holds the counters fed by [Metrics.Hooks].
type Metrics struct {
	Calls           *prometheus.CounterVec
	NoResponseCalls *prometheus.CounterVec
	ParallelCalls   *prometheus.CounterVec
	ParallelEntries *prometheus.CounterVec
	Replies         prometheus.Counter
	Retries         *prometheus.CounterVec
	Exhausted       *prometheus.CounterVec
	Aborts          prometheus.Counter
	Finishes        prometheus.Counter
	MalformedInputs prometheus.Counter
}

// New registers the counters on reg under namespace. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Outbound calls that wait for a response.",
		}, []string{"service", "kind"}),
		NoResponseCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_response_calls_total",
			Help:      "Fire-and-forget outbound calls.",
		}, []string{"service"}),
		ParallelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parallel_calls_total",
			Help:      "Parallel call bundles handed to the engine.",
		}, []string{"kind"}),
		ParallelEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parallel_call_entries_total",
			Help:      "Entries dispatched through parallel calls.",
		}, []string{"kind"}),
		Replies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies sent to transaction invokers.",
		}),
		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Calls replayed from the correlation holder.",
		}, []string{"service"}),
		Exhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_exhausted_total",
			Help:      "Retry flows that ran out of budget.",
		}, []string{"service"}),
		Aborts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aborts_total",
			Help:      "Transactions driven to a failed terminal state.",
		}),
		Finishes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finishes_total",
			Help:      "Transactions finished successfully.",
		}),
		MalformedInputs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_inputs_total",
			Help:      "Incoming payloads that were absent or mistyped.",
		}),
	}
}

// Hooks returns callbacks that update the counters.
func (m *Metrics) Hooks() *fsmhelper.Hooks {
	return &fsmhelper.Hooks{
		OnCall: func(svc fsmhelper.Service, kind fsmhelper.CallKind) {
			m.Calls.WithLabelValues(svc.ID, kind.String()).Inc()
		},
		OnNoResponseCall: func(svc fsmhelper.Service) {
			m.NoResponseCalls.WithLabelValues(svc.ID).Inc()
		},
		OnParallelCall: func(n int, kind fsmhelper.CallKind) {
			m.ParallelCalls.WithLabelValues(kind.String()).Inc()
			m.ParallelEntries.WithLabelValues(kind.String()).Add(float64(n))
		},
		OnReply: func() { m.Replies.Inc() },
		OnRetry: func(svc fsmhelper.Service, _ int) {
			m.Retries.WithLabelValues(svc.ID).Inc()
		},
		OnRetriesExhausted: func(svc fsmhelper.Service) {
			m.Exhausted.WithLabelValues(serviceLabel(svc)).Inc()
		},
		OnAbort:          func(error) { m.Aborts.Inc() },
		OnFinish:         func() { m.Finishes.Inc() },
		OnMalformedInput: func(error) { m.MalformedInputs.Inc() },
	}
}

// serviceLabel names the service of an exhausted flow; a flow that never
// recorded a service is reported as "none".
func serviceLabel(svc fsmhelper.Service) string {
	if svc.ID == "" {
		return "none"
	}

	return svc.ID
}

