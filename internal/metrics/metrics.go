// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー層とサービス層から利用する。
type MetricsCollector interface {
	RecordResolveSuccess()
	RecordResolveNotFound()
	RecordResolveMalformed()
	RecordResolveLatency(duration time.Duration)
	RecordPublish(repositoryCount int)
	RecordWidgetScriptServed()
	RecordActivityFetch(entryCount int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	resolveTotal       *prometheus.CounterVec
	resolveLatency     prometheus.Histogram
	publishTotal       prometheus.Counter
	publishedRepos     prometheus.Counter
	widgetScriptServed prometheus.Counter
	activityFetchTotal prometheus.Counter
	activityEntries    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devshelf_resolve_total",
			Help: "ショーケース解決の結果別の合計数",
		}, []string{"result"}),
		resolveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devshelf_resolve_latency_seconds",
			Help:    "ショーケース解決のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		publishTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devshelf_publish_total",
			Help: "ショーケース公開の合計数",
		}),
		publishedRepos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devshelf_published_repositories_total",
			Help: "公開されたリポジトリの合計数",
		}),
		widgetScriptServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devshelf_widget_script_served_total",
			Help: "ウィジェットスクリプト配信の合計数",
		}),
		activityFetchTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devshelf_activity_fetch_total",
			Help: "アクティビティ取得の合計数",
		}),
		activityEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devshelf_activity_entries_total",
			Help: "取得されたコミット活動の合計数",
		}),
	}

	reg.MustRegister(
		c.resolveTotal,
		c.resolveLatency,
		c.publishTotal,
		c.publishedRepos,
		c.widgetScriptServed,
		c.activityFetchTotal,
		c.activityEntries,
	)

	return c
}

// RecordResolveSuccess はショーケース解決の成功を記録する。
func (c *Collector) RecordResolveSuccess() {
	c.resolveTotal.WithLabelValues("success").Inc()
}

// RecordResolveNotFound は未検出による解決失敗を記録する。
func (c *Collector) RecordResolveNotFound() {
	c.resolveTotal.WithLabelValues("not_found").Inc()
}

// RecordResolveMalformed は不正レコードによる解決失敗を記録する。
func (c *Collector) RecordResolveMalformed() {
	c.resolveTotal.WithLabelValues("malformed").Inc()
}

// RecordResolveLatency はショーケース解決のレイテンシを記録する。
func (c *Collector) RecordResolveLatency(duration time.Duration) {
	c.resolveLatency.Observe(duration.Seconds())
}

// RecordPublish はショーケース公開を記録する。
func (c *Collector) RecordPublish(repositoryCount int) {
	c.publishTotal.Inc()
	c.publishedRepos.Add(float64(repositoryCount))
}

// RecordWidgetScriptServed はウィジェットスクリプトの配信を記録する。
func (c *Collector) RecordWidgetScriptServed() {
	c.widgetScriptServed.Inc()
}

// RecordActivityFetch はアクティビティ取得を記録する。
func (c *Collector) RecordActivityFetch(entryCount int) {
	c.activityFetchTotal.Inc()
	c.activityEntries.Add(float64(entryCount))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
