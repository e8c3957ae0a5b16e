package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LifecycleOpsTotal.WithLabelValues("create", "ok").Inc()
	m.ValuationsAppendedTotal.WithLabelValues("Initial").Add(2)
	m.EvolutionPoints.Observe(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LifecycleOpsTotal.WithLabelValues("create", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValuationsAppendedTotal.WithLabelValues("Initial")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "patrimony_lifecycle_operations_total")
	assert.Contains(t, names, "patrimony_evolution_points")
}

func TestNew_NilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		m := New(nil)
		m.AggregationsTotal.WithLabelValues("net_worth", "ok").Inc()
	})
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("boom")))
}
