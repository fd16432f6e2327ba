package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 打卡切换计数
	ToggleCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completion_toggle_total",
			Help: "Total number of habit completion toggles",
		},
		[]string{"result"}, // result: completed, uncompleted, recovered_conflict, recovered_not_found, error
	)

	// 统计计算耗时（秒）
	StatsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_stats_duration_seconds",
			Help:    "Progress stats computation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"period"},
	)

	// 统计缓存命中
	StatsCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_stats_cache_total",
			Help: "Progress stats cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Outbox 发布计数
	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_total",
			Help: "Outbox events published to MQ",
		},
		[]string{"routing_key", "status"}, // status: sent, failed, breaker_open
	)
)

// IncrementToggle 增加打卡切换计数
func IncrementToggle(result string) {
	ToggleCount.WithLabelValues(result).Inc()
}

// RecordStatsDuration 记录统计计算耗时
func RecordStatsDuration(period string, duration time.Duration) {
	StatsDuration.WithLabelValues(period).Observe(duration.Seconds())
}

// IncrementStatsCache 记录缓存命中情况
func IncrementStatsCache(result string) {
	StatsCacheCount.WithLabelValues(result).Inc()
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
	DBQueryDuration.WithLabelValues("slow", "unknown").Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementOutboxPublish 记录 outbox 发布结果
func IncrementOutboxPublish(routingKey, status string) {
	OutboxPublishCount.WithLabelValues(routingKey, status).Inc()
}
