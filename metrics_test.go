package penlive

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry, "pens")

	m.message()
	m.decodeError()
	m.state(Open)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
		for _, metric := range f.GetMetric() {
			require.Len(t, metric.GetLabel(), 1)
			assert.Equal(t, "feed", metric.GetLabel()[0].GetName())
			assert.Equal(t, "pens", metric.GetLabel()[0].GetValue())
		}
	}

	for _, name := range []string{
		"penlive_connection_attempts_total",
		"penlive_reconnects_total",
		"penlive_messages_total",
		"penlive_decode_errors_total",
		"penlive_transport_errors_total",
		"penlive_exhaustions_total",
		"penlive_connection_state",
	} {
		assert.True(t, names[name], "missing %s", name)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Messages))
	assert.Equal(t, float64(Open), testutil.ToFloat64(m.ConnectionState))
}

func TestNewMetrics_TwoFeedsShareRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	assert.NotPanics(t, func() {
		NewMetrics(registry, "pens")
		NewMetrics(registry, "pen")
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.connectionAttempt()
		m.reconnect()
		m.message()
		m.decodeError()
		m.transportError()
		m.exhausted()
		m.state(Failed)
	})
}
