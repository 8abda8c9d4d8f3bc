package statemachine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons used as metric label values.
const (
	reasonUnknownTransition = "unknown_transition"
	reasonInvalidSource     = "invalid_source"
	reasonOther             = "other"

	// unknownTransitionLabel replaces caller-supplied names that are not in the
	// table, which would otherwise give the label unbounded cardinality.
	unknownTransitionLabel = "unknown"
)

// Metric definitions with appropriate labels.
var (
	// transitionsTotal counts committed transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transitions_total",
		Help: "Total number of committed transitions by machine, transition, from_state and to_state",
	}, []string{"machine", "transition", "from_state", "to_state"})

	// transitionRejectionsTotal counts Fire calls that did not change state.
	transitionRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_transition_rejections_total",
		Help: "Total number of rejected transitions by machine, transition and reason",
	}, []string{"machine", "transition", "reason"})

	// hookFailuresTotal counts hooks that returned an error or panicked.
	hookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_hook_failures_total",
		Help: "Total number of failed transition hooks by machine and transition",
	}, []string{"machine", "transition"})

	// hookDuration tracks how long hooks block Fire.
	hookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statemachine_hook_duration_seconds",
		Help:    "Duration of transition hook execution by machine and transition",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "transition"})

	// mailboxPending tracks requests waiting in a mailbox.
	mailboxPending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "statemachine_mailbox_pending",
		Help: "Number of Fire requests queued in a mailbox by machine",
	}, []string{"machine"})
)

// rejectionLabels maps a Fire error to its transition and reason label values.
func rejectionLabels(name string, err error) (string, string) {
	switch {
	case errors.Is(err, ErrUnknownTransition):
		return unknownTransitionLabel, reasonUnknownTransition
	case errors.Is(err, ErrInvalidTransition):
		return name, reasonInvalidSource
	default:
		return name, reasonOther
	}
}
