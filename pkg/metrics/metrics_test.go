package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })

	AuthAttempts.WithLabelValues("signin", OutcomeInvalid).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(AuthAttempts.WithLabelValues("signin", OutcomeInvalid)), 1.0)
}

func TestRegisterMetrics_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)
	assert.Panics(t, func() { RegisterMetrics(reg) })
}
