package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("notice").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("notice").End(boom), boom)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("notice", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("notice", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("notice")))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("notice").End(boom), boom)
}
