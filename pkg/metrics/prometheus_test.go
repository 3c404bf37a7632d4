package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("ticpin", reg)

	m.PassLookups.WithLabelValues("active").Inc()
	m.DuplicatesDeleted.Add(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PassLookups.WithLabelValues("active")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.DuplicatesDeleted))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetricsTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("ticpin", prometheus.NewRegistry())
		NewMetrics("ticpin", prometheus.NewRegistry())
	})
}
