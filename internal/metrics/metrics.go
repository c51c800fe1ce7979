// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミューテーションサービスとHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordMutation(op, outcome string)
	RecordCascadeRemoved(entity string, count int)
	SetEntityCounts(users, posts, comments int)
	SetIntegrityViolations(count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	mutations      *prometheus.CounterVec
	cascadeRemoved *prometheus.CounterVec
	entities       *prometheus.GaugeVec
	violations     prometheus.Gauge
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postgraph_mutations_total",
			Help: "操作・結果別のミューテーション実行数",
		}, []string{"operation", "outcome"}),
		cascadeRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postgraph_cascade_removed_total",
			Help: "削除操作で取り除かれたレコードのエンティティ別合計数",
		}, []string{"entity"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postgraph_entities",
			Help: "ストアに保持されているレコード数",
		}, []string{"entity"}),
		violations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "postgraph_integrity_violations",
			Help: "直近の整合性検査で見つかった違反の件数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postgraph_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "postgraph_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.mutations,
		c.cascadeRemoved,
		c.entities,
		c.violations,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordMutation はミューテーションの実行結果を記録する。
func (c *Collector) RecordMutation(op, outcome string) {
	c.mutations.WithLabelValues(op, outcome).Inc()
}

// RecordCascadeRemoved は削除されたレコード数を記録する。
func (c *Collector) RecordCascadeRemoved(entity string, count int) {
	if count <= 0 {
		return
	}
	c.cascadeRemoved.WithLabelValues(entity).Add(float64(count))
}

// SetEntityCounts は現在のレコード数を設定する。
func (c *Collector) SetEntityCounts(users, posts, comments int) {
	c.entities.WithLabelValues("user").Set(float64(users))
	c.entities.WithLabelValues("post").Set(float64(posts))
	c.entities.WithLabelValues("comment").Set(float64(comments))
}

// SetIntegrityViolations は直近の整合性検査の違反件数を設定する。
func (c *Collector) SetIntegrityViolations(count int) {
	c.violations.Set(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
