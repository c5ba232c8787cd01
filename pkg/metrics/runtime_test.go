package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestSampleRuntime(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollector(reg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.SampleRuntime(ctx, time.Hour)
		close(done)
	}()

	// 启动时立即采样一次，不必等第一个 tick
	assert.Eventually(t, func() bool {
		return gaugeValue(t, reg, "memory_usage_bytes") > 0
	}, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, gaugeValue(t, reg, "active_goroutines"), float64(2))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop")
	}
}
