// Package metrics exposes scheduler outcomes as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"programscheduler/internal/domain"
)

type schedulerMetrics struct {
	conflicts          prometheus.Counter
	referenceViolation prometheus.Counter
	schedulesServed    *prometheus.CounterVec
	daysGenerated      *prometheus.CounterVec
}

// NewSchedulerMetrics registers the scheduler collectors on reg.
func NewSchedulerMetrics(reg prometheus.Registerer) domain.SchedulerMetrics {
	m := &schedulerMetrics{
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "program_scheduler_conflicts_total",
			Help: "Total number of bookings rejected for overlapping an existing session",
		}),
		referenceViolation: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "program_scheduler_reference_violations_total",
			Help: "Total number of writes rejected for cross-event references",
		}),
		schedulesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "program_scheduler_schedules_served_total",
			Help: "Total number of day schedules served, by source",
		}, []string{"source"}),
		daysGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "program_scheduler_days_generated_total",
			Help: "Total number of event days created by the generator, by strategy",
		}, []string{"strategy"}),
	}
	reg.MustRegister(m.conflicts, m.referenceViolation, m.schedulesServed, m.daysGenerated)
	return m
}

func (m *schedulerMetrics) ConflictDetected() {
	m.conflicts.Inc()
}

func (m *schedulerMetrics) ReferenceViolation() {
	m.referenceViolation.Inc()
}

func (m *schedulerMetrics) ScheduleServed(source string) {
	m.schedulesServed.WithLabelValues(source).Inc()
}

func (m *schedulerMetrics) DaysGenerated(strategy domain.DayGenerationStrategy, n int) {
	if n <= 0 {
		return
	}
	m.daysGenerated.WithLabelValues(string(strategy)).Add(float64(n))
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ConflictDetected()                               {}
func (Nop) ReferenceViolation()                             {}
func (Nop) ScheduleServed(string)                           {}
func (Nop) DaysGenerated(domain.DayGenerationStrategy, int) {}
