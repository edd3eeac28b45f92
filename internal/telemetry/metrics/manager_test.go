package metrics_test

import (
	"testing"

	"github.com/2beens/fittrack/internal/telemetry/metrics"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegistersAndCounts(t *testing.T) {
	manager, registry := metrics.NewTestManagerAndRegistry()

	manager.CounterActivitiesLogged.Inc()
	manager.CounterActivitiesLogged.Inc()
	manager.CounterBadgesAwarded.WithLabelValues("early_bird").Inc()
	manager.GaugeLifeSignal.Set(1)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	activities, ok := byName["backend_test_server_activities_logged"]
	require.True(t, ok)
	assert.Equal(t, float64(2), activities.GetMetric()[0].GetCounter().GetValue())

	badges, ok := byName["backend_test_server_badges_awarded"]
	require.True(t, ok)
	require.Len(t, badges.GetMetric(), 1)
	assert.Equal(t, float64(1), badges.GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, "badge_type", badges.GetMetric()[0].GetLabel()[0].GetName())
	assert.Equal(t, "early_bird", badges.GetMetric()[0].GetLabel()[0].GetValue())

	life, ok := byName["backend_test_server_life_signal"]
	require.True(t, ok)
	assert.Equal(t, float64(1), life.GetMetric()[0].GetGauge().GetValue())
}
