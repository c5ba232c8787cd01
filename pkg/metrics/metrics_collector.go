package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 业务指标
	votesTotal            *prometheus.CounterVec
	viewsRecorded         prometheus.Counter
	countersClamped       *prometheus.CounterVec
	reportsSubmitted      *prometheus.CounterVec
	moderationRemovals    *prometheus.CounterVec
	notificationsDropped  prometheus.Counter
	notificationQueueSize prometheus.Gauge

	// 应用指标
	activeGoroutines prometheus.Gauge
	memoryUsage      prometheus.Gauge
}

// NewMetricsCollector 创建指标收集器并注册到 reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		votesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_votes_total",
				Help: "Votes applied, by outcome",
			},
			[]string{"outcome"},
		),

		viewsRecorded: f.NewCounter(
			prometheus.CounterOpts{
				Name: "board_unique_views_total",
				Help: "First views recorded per (viewer, post)",
			},
		),

		countersClamped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_counters_clamped_total",
				Help: "Counter decrements floored at zero",
			},
			[]string{"table", "field"},
		),

		reportsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_reports_submitted_total",
				Help: "Reports submitted, by target type",
			},
			[]string{"target_type"},
		),

		moderationRemovals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_moderation_removals_total",
				Help: "Content removed by admins, by target type",
			},
			[]string{"target_type"},
		),

		notificationsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "board_notifications_dropped_total",
				Help: "Notifications dropped after retries or on a full queue",
			},
		),

		notificationQueueSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "board_notification_queue_length",
				Help: "Pending notification tasks",
			},
		),

		activeGoroutines: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_goroutines",
				Help: "Number of active goroutines",
			},
		),

		memoryUsage: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration, responseSize int) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, getStatusCategory(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordVote 记录投票结果（added/changed/removed）
func (m *MetricsCollector) RecordVote(outcome string) {
	m.votesTotal.WithLabelValues(outcome).Inc()
}

// RecordView 记录一次首次浏览
func (m *MetricsCollector) RecordView() {
	m.viewsRecorded.Inc()
}

// RecordCounterClamped 记录一次被截断到 0 的计数器修正
func (m *MetricsCollector) RecordCounterClamped(table, field string) {
	m.countersClamped.WithLabelValues(table, field).Inc()
}

// RecordReport 记录举报
func (m *MetricsCollector) RecordReport(targetType string) {
	m.reportsSubmitted.WithLabelValues(targetType).Inc()
}

// RecordRemoval 记录管理员删除
func (m *MetricsCollector) RecordRemoval(targetType string) {
	m.moderationRemovals.WithLabelValues(targetType).Inc()
}

// RecordNotificationDropped 记录丢弃的通知
func (m *MetricsCollector) RecordNotificationDropped() {
	m.notificationsDropped.Inc()
}

// UpdateNotificationQueue 更新通知队列长度
func (m *MetricsCollector) UpdateNotificationQueue(n int) {
	m.notificationQueueSize.Set(float64(n))
}

// UpdateActiveGoroutines 更新活跃 goroutine 数量
func (m *MetricsCollector) UpdateActiveGoroutines(count int) {
	m.activeGoroutines.Set(float64(count))
}

// UpdateMemoryUsage 更新内存使用量
func (m *MetricsCollector) UpdateMemoryUsage(bytes uint64) {
	m.memoryUsage.Set(float64(bytes))
}

// getStatusCategory 获取状态分类
func getStatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器，首次调用时注册到默认 Registry
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
