package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	gestureOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planboard",
			Name:      "gesture_outcome_total",
			Help:      "Count of finished gestures by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	groupApply = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planboard",
			Name:      "group_apply_total",
			Help:      "Count of group date shifts by outcome.",
		},
		[]string{"outcome"},
	)

	selectionProposed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planboard",
			Name:      "selection_proposed_total",
			Help:      "Count of booking proposals produced by cell selections.",
		},
	)

	writeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planboard",
			Name:      "write_failures_total",
			Help:      "Count of data service writes that failed and were rolled back.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(gestureOutcome, groupApply, selectionProposed, writeFailures)
	})
}

func IncGesture(kind, outcome string) {
	gestureOutcome.WithLabelValues(kind, outcome).Inc()
}

func IncGroupApply(outcome string) {
	groupApply.WithLabelValues(outcome).Inc()
}

func IncSelectionProposed() {
	selectionProposed.Inc()
}

func IncWriteFailure() {
	writeFailures.Inc()
}
