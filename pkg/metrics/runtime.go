package metrics

import (
	"context"
	"runtime"
	"time"
)

// SampleRuntime 按固定间隔采样 goroutine 数与堆内存，直到 ctx 结束
// ReadMemStats 会短暂 stop-the-world，不放在请求路径上
func (m *MetricsCollector) SampleRuntime(ctx context.Context, interval time.Duration) {
	m.sampleRuntime()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sampleRuntime()
		}
	}
}

func (m *MetricsCollector) sampleRuntime() {
	m.UpdateActiveGoroutines(runtime.NumGoroutine())
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.UpdateMemoryUsage(ms.Alloc)
}
