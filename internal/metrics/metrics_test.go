package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue は指定メトリクス名のカウンタ値をレジストリから取得するヘルパー。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var sum float64
			for _, m := range mf.GetMetric() {
				sum += m.GetCounter().GetValue()
			}
			return sum
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestRecordResolve_IncrementsCounterWithLabel は解決結果カウンタが結果ラベル付きで増加することを検証する。
func TestRecordResolve_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResolveSuccess()
	c.RecordResolveSuccess()
	c.RecordResolveNotFound()
	c.RecordResolveMalformed()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "devshelf_resolve_total" {
			found = true
			if len(mf.GetMetric()) != 3 {
				t.Fatalf("expected 3 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "success":
					if val != 2 {
						t.Errorf("resolve_total{result=success} = %v, want 2", val)
					}
				case "not_found":
					if val != 1 {
						t.Errorf("resolve_total{result=not_found} = %v, want 1", val)
					}
				case "malformed":
					if val != 1 {
						t.Errorf("resolve_total{result=malformed} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("devshelf_resolve_total metric not found")
	}
}

// TestRecordResolveLatency_ObservesHistogram は解決レイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordResolveLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResolveLatency(100 * time.Millisecond)
	c.RecordResolveLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "devshelf_resolve_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("devshelf_resolve_latency_seconds metric not found")
	}
}

// TestRecordPublish_IncrementsBothCounters は公開カウンタとリポジトリ数カウンタが増加することを検証する。
func TestRecordPublish_IncrementsBothCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPublish(3)
	c.RecordPublish(5)

	if got := counterValue(t, reg, "devshelf_publish_total"); got != 2 {
		t.Errorf("publish_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "devshelf_published_repositories_total"); got != 8 {
		t.Errorf("published_repositories_total = %v, want 8", got)
	}
}

// TestRecordWidgetScriptServed_IncrementsCounter はスクリプト配信カウンタが増加することを検証する。
func TestRecordWidgetScriptServed_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWidgetScriptServed()
	c.RecordWidgetScriptServed()

	if got := counterValue(t, reg, "devshelf_widget_script_served_total"); got != 2 {
		t.Errorf("widget_script_served_total = %v, want 2", got)
	}
}

// TestRecordActivityFetch_IncrementsBothCounters はアクティビティ取得カウンタが増加することを検証する。
func TestRecordActivityFetch_IncrementsBothCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordActivityFetch(7)
	c.RecordActivityFetch(0)

	if got := counterValue(t, reg, "devshelf_activity_fetch_total"); got != 2 {
		t.Errorf("activity_fetch_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "devshelf_activity_entries_total"); got != 7 {
		t.Errorf("activity_entries_total = %v, want 7", got)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordResolveSuccess()
	c.RecordResolveLatency(500 * time.Millisecond)
	c.RecordPublish(2)
	c.RecordWidgetScriptServed()
	c.RecordActivityFetch(4)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"devshelf_resolve_total",
		"devshelf_resolve_latency_seconds",
		"devshelf_publish_total",
		"devshelf_widget_script_served_total",
		"devshelf_activity_fetch_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordPublish(1)
	c2.RecordPublish(1)
	c2.RecordPublish(1)

	if got := counterValue(t, reg1, "devshelf_publish_total"); got != 1 {
		t.Errorf("reg1 publish_total = %v, want 1", got)
	}
	if got := counterValue(t, reg2, "devshelf_publish_total"); got != 2 {
		t.Errorf("reg2 publish_total = %v, want 2", got)
	}
}
