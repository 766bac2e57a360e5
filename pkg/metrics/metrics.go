// Package metrics 基于Prometheus的指标收集
//
// 指标分三类:
//   - HTTP:请求数、耗时、处理中请求数
//   - 库存业务:购买结果、售出册数、售罄次数、写操作结果
//   - 依赖:缓存命中、熔断器状态、消息发布/消费
//
// 未调用InitMetrics时所有Record*函数为空操作(metrics.enabled=false)。
//
// 命名规范:Counter以_total结尾,Histogram以单位结尾(_seconds)。
// 标签只用有限取值的维度(method、status、result),不用book_id。
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板,如/api/v1/books/:id)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// BookPurchasesTotal 购买请求结果
	// result: success | insufficient_stock | not_found | invalid | error
	BookPurchasesTotal *prometheus.CounterVec

	// BookUnitsSoldTotal 累计售出册数
	BookUnitsSoldTotal prometheus.Counter

	// BookSoldOutTotal 售罄(记录被删除)次数
	BookSoldOutTotal prometheus.Counter

	// BookOperationsTotal 图书写操作结果
	// operation: create | update | delete, result: success | failure
	BookOperationsTotal *prometheus.CounterVec

	// CacheRequestsTotal 图书缓存查询结果
	// result: hit | miss | error
	CacheRequestsTotal *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求结果
	// result: success | failure | rejected
	CircuitBreakerRequests *prometheus.CounterVec

	// MessagesPublishedTotal 消息发布结果
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费结果
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 注册所有指标到默认Registry,可重复调用
func InitMetrics() {
	initOnce.Do(register)
}

// Enabled 是否已初始化
func Enabled() bool {
	return HTTPRequestsTotal != nil
}

func register() {
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
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BookPurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_purchases_total",
			Help: "图书购买请求总数",
		},
		[]string{"result"},
	)

	BookUnitsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "book_units_sold_total",
			Help: "累计售出册数",
		},
	)

	BookSoldOutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "book_sold_out_total",
			Help: "图书售罄次数",
		},
	)

	BookOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_operations_total",
			Help: "图书写操作总数",
		},
		[]string{"operation", "result"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_cache_requests_total",
			Help: "图书缓存查询总数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// 结果标签
const (
	ResultSuccess           = "success"
	ResultFailure           = "failure"
	ResultRejected          = "rejected"
	ResultInsufficientStock = "insufficient_stock"
	ResultNotFound          = "not_found"
	ResultInvalid           = "invalid"
	ResultError             = "error"
	ResultHit               = "hit"
	ResultMiss              = "miss"
	ResultStale             = "stale"
)

// RecordPurchase 记录一次购买结果
// 成功时累加售出册数,soldOut时累加售罄次数
func RecordPurchase(result string, quantity int, soldOut bool) {
	if !Enabled() {
		return
	}
	BookPurchasesTotal.WithLabelValues(result).Inc()
	if result != ResultSuccess {
		return
	}
	BookUnitsSoldTotal.Add(float64(quantity))
	if soldOut {
		BookSoldOutTotal.Inc()
	}
}

// RecordOperation 记录图书写操作
func RecordOperation(operation string, err error) {
	if !Enabled() {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	BookOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordCache 记录缓存查询结果
func RecordCache(result string) {
	if !Enabled() {
		return
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState 更新熔断器状态,state取值同circuitbreaker.State
func SetCircuitBreakerState(name string, state int) {
	if !Enabled() {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreaker 记录熔断器请求结果
func RecordCircuitBreaker(name, result string) {
	if !Enabled() {
		return
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordPublish 记录消息发布
func RecordPublish(exchange, routingKey string, err error) {
	if !Enabled() {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}

// RecordConsume 记录消息消费
func RecordConsume(queue string, seconds float64, err error) {
	if !Enabled() {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	MessagesConsumedTotal.WithLabelValues(queue, result).Inc()
	MessageProcessingDuration.Observe(seconds)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
