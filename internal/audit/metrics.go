package audit

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docportal_activity_events_total",
			Help: "Activity events recorded, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
	eventWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docportal_activity_write_failures_total",
			Help: "Activity events that could not be persisted.",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(eventsRecorded, eventWriteFailures)
}

// outcomeOf reduces a status string to a low cardinality label.
func outcomeOf(status string) string {
	switch {
	case strings.HasPrefix(status, statusFailedPrefix):
		return "failed"
	case strings.HasPrefix(status, statusPartialPrefix):
		return "partial"
	default:
		return "success"
	}
}
