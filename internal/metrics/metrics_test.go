package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewIsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestObserveParse(t *testing.T) {
	m := New()
	before := testutil.ToFloat64(m.ParsesTotal.WithLabelValues("cache"))
	fieldsBefore := testutil.ToFloat64(m.FieldsTotal.WithLabelValues("plot_number"))

	m.ObserveParse("cache", time.Millisecond, []string{"plot_number", "society"})

	assert.Equal(t, before+1, testutil.ToFloat64(m.ParsesTotal.WithLabelValues("cache")))
	assert.Equal(t, fieldsBefore+1, testutil.ToFloat64(m.FieldsTotal.WithLabelValues("plot_number")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveParse("engine", time.Millisecond, []string{"society"})
		m.CacheError("get")
	})
}
