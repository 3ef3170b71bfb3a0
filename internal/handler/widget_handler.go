package handler

import (
	_ "embed"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nishant/devshelf/internal/metrics"
	"github.com/nishant/devshelf/internal/widget"
)

//go:embed assets/widget.js
var widgetScriptTemplate string

// WidgetHandler は埋め込み用ブラウザスクリプトを配信するハンドラー。
// スクリプトはビルド時に埋め込み、起動時にベースURLとフェッチ
// タイムアウトを焼き込む。
type WidgetHandler struct {
	script  []byte
	metrics metrics.MetricsCollector
}

// NewWidgetHandler はWidgetHandlerを生成する。
// baseURLはスクリプト内のAPI呼び出し先として焼き込まれる公開URL。
// fetchTimeoutはマウントごとのフェッチ時間予算で、0以下の場合は
// widget.DefaultFetchTimeoutを使用する。
func NewWidgetHandler(baseURL string, fetchTimeout time.Duration, collector metrics.MetricsCollector) *WidgetHandler {
	if fetchTimeout <= 0 {
		fetchTimeout = widget.DefaultFetchTimeout
	}
	script := strings.ReplaceAll(widgetScriptTemplate, "{{BASE_URL}}", strings.TrimRight(baseURL, "/"))
	script = strings.ReplaceAll(script, "{{FETCH_TIMEOUT_MS}}", strconv.FormatInt(fetchTimeout.Milliseconds(), 10))
	return &WidgetHandler{
		script:  []byte(script),
		metrics: collector,
	}
}

// Get はウィジェットスクリプトを返す。
// GET /widget.js
func (h *WidgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordWidgetScriptServed()

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(h.script)
}
