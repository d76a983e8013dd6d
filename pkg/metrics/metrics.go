// Package metrics 提供 Prometheus 指标：Pipeline 各 Node 耗时、推荐请求与 HTTP 接口。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline 指标
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agrorec_node_duration_seconds",
			Help:    "Duration of a pipeline node in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"node", "kind"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrorec_node_errors_total",
			Help: "Total number of pipeline node errors",
		},
		[]string{"node", "kind"},
	)

	// 推荐指标
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrorec_recommendations_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "invalid", "error"
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agrorec_recommendation_results",
			Help:    "Number of associations returned per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	// API 指标
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrorec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agrorec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 快照指标
	SnapshotAssociations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agrorec_snapshot_associations",
			Help: "Number of associations in the loaded snapshot",
		},
	)

	SnapshotRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agrorec_snapshot_ratings",
			Help: "Number of known ratings in the loaded snapshot",
		},
	)
)

// Outcome 标签取值。
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// ObserveNode 记录一次 Node 执行。
func ObserveNode(node, kind string, duration time.Duration, err error) {
	NodeDuration.WithLabelValues(node, kind).Observe(duration.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node, kind).Inc()
	}
}

// RecordRecommendation 记录一次推荐查询的结果。
func RecordRecommendation(outcome string, results int) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeEmpty {
		RecommendationResults.Observe(float64(results))
	}
}

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetSnapshotSize 更新快照规模。
func SetSnapshotSize(associations, ratings int) {
	SnapshotAssociations.Set(float64(associations))
	SnapshotRatings.Set(float64(ratings))
}
