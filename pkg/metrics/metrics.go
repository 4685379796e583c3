// Package metrics 提供 Prometheus helper，包含通知业务与基础设施指标模板
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	// 创建的通知总数（按渠道）
	NotificationsTotal *prometheus.CounterVec
	// 当前未达终态的通知数
	NotificationsActive prometheus.Gauge
	// 送达总数（按渠道）
	DeliveriesTotal *prometheus.CounterVec
	// 重试总数（按渠道）
	RetriesTotal *prometheus.CounterVec
	// 永久失败总数（按渠道）
	PermanentFailuresTotal *prometheus.CounterVec
	// Outbox 投递总数（按结果）
	OutboxPublishedTotal *prometheus.CounterVec
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Total notifications created",
		}, []string{"channel"}),
		NotificationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "notifications_active",
			Help:      "Number of notifications not yet in a terminal state",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "deliveries_total",
			Help:      "Total notifications delivered",
		}, []string{"channel"}),
		RetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "retries_total",
			Help:      "Total notification retries scheduled",
		}, []string{"channel"}),
		PermanentFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "permanent_failures_total",
			Help:      "Total notifications permanently failed",
		}, []string{"channel"}),
		OutboxPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notification",
			Subsystem: serviceName,
			Name:      "outbox_published_total",
			Help:      "Total outbox messages published",
		}, []string{"result"}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.NotificationsTotal,
		m.NotificationsActive,
		m.DeliveriesTotal,
		m.RetriesTotal,
		m.PermanentFailuresTotal,
		m.OutboxPublishedTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// Handler 返回 Prometheus 指标 HTTP Handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
