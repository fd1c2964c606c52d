// Package metrics Prometheus指标
//
// 所有指标在包初始化时注册到默认Registry,通过Handler()暴露在/metrics。
//
//	# 借阅失败原因分布
//	sum by (reason) (rate(library_lending_failures_total[5m]))
//	# 接口P99耗时
//	histogram_quantile(0.99, sum by (le, path) (rate(http_request_duration_seconds_bucket[5m])))
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "library"

// =========================================
// HTTP
// =========================================

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)
)

// =========================================
// 借阅业务
// =========================================

var (
	LoansRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_registered_total",
		Help:      "借出登记总数",
	})

	LoansReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "归还登记总数",
	})

	// LendingFailuresTotal 借还失败,reason为错误码
	LendingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lending_failures_total",
			Help:      "借还操作失败总数",
		},
		[]string{"operation", "reason"},
	)

	// FinesAssessedTotal action: created/updated/unchanged/none
	FinesAssessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_total",
			Help:      "罚款核算次数",
		},
		[]string{"action"},
	)

	WaitlistJoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "waitlist_joins_total",
		Help:      "加入候补名单总数",
	})

	// NotificationsTotal driver: log/redis/rabbitmq; result: success/failure/rejected
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "副本可借通知投递次数",
		},
		[]string{"driver", "result"},
	)
)

// =========================================
// 基础设施
// =========================================

var (
	// CircuitBreakerState 0=closed 1=open 2=half_open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=closed, 1=open, 2=half_open)",
		},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
)

// ObserveHTTP 记录一次HTTP请求
// path用路由模板(/api/v1/books/:id),避免标签基数爆炸
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// LendingFailure 记录借还失败
func LendingFailure(operation string, code int) {
	LendingFailuresTotal.WithLabelValues(operation, strconv.Itoa(code)).Inc()
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}
