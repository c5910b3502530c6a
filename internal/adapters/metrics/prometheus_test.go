package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"programscheduler/internal/domain"
)

func TestSchedulerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg).(*schedulerMetrics)

	m.ConflictDetected()
	m.ConflictDetected()
	m.ReferenceViolation()
	m.ScheduleServed(domain.ScheduleSourceBuild)
	m.ScheduleServed(domain.ScheduleSourceCache)
	m.ScheduleServed(domain.ScheduleSourceCache)
	m.DaysGenerated(domain.StrategyBusinessDays, 3)
	m.DaysGenerated(domain.StrategyAllDays, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.referenceViolation))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.schedulesServed.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.schedulesServed.WithLabelValues("build")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.daysGenerated.WithLabelValues("business_days")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["program_scheduler_conflicts_total"])
	assert.True(t, names["program_scheduler_days_generated_total"])
	assert.False(t, names["program_scheduler_unknown_total"])
}

func TestSchedulerMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewSchedulerMetrics(reg)
	assert.Panics(t, func() { NewSchedulerMetrics(reg) })
}
