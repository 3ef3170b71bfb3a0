package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWidgetHandler_ServesScriptWithBaseURL(t *testing.T) {
	m := &mockMetrics{}
	h := NewWidgetHandler("https://devshelf.example.com/", 5*time.Second, m)

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/javascript") {
		t.Errorf("Content-Type = %q, want application/javascript", got)
	}

	body := w.Body.String()
	// ベースURLが焼き込まれ、プレースホルダーが残っていないこと
	if !strings.Contains(body, `"https://devshelf.example.com"`) {
		t.Error("script must contain the configured base URL without trailing slash")
	}
	if strings.Contains(body, "{{BASE_URL}}") || strings.Contains(body, "{{FETCH_TIMEOUT_MS}}") {
		t.Error("script must not contain placeholders")
	}

	// ウィジェットの主要な契約がスクリプトに含まれること
	for _, want := range []string{
		"devshelf-widget",
		"data-showcase-id",
		"Showcase not found or unavailable",
		"MutationObserver",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("script missing %q", want)
		}
	}

	if m.widgetServed != 1 {
		t.Errorf("metrics: widgetServed = %d, want 1", m.widgetServed)
	}
}

func TestWidgetHandler_BakesFetchTimeout(t *testing.T) {
	h := NewWidgetHandler("https://devshelf.example.com", 5*time.Second, &mockMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "FETCH_TIMEOUT_MS = 5000;") {
		t.Error("script must contain the configured fetch timeout in milliseconds")
	}
	// タイムアウト予算が実際にフェッチに適用されること
	if !strings.Contains(body, "AbortController") {
		t.Error("script must abort the fetch when the timeout budget expires")
	}
}

func TestWidgetHandler_ZeroTimeoutUsesDefault(t *testing.T) {
	h := NewWidgetHandler("https://devshelf.example.com", 0, &mockMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	if !strings.Contains(w.Body.String(), "FETCH_TIMEOUT_MS = 10000;") {
		t.Error("script must fall back to the default 10s fetch timeout")
	}
}

func TestWidgetHandler_CardMarkupMatchesFragmentRenderer(t *testing.T) {
	h := NewWidgetHandler("https://devshelf.example.com", time.Second, &mockMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	w := httptest.NewRecorder()

	h.Get(w, req)

	// サーバー側フラグメントと同じカード構造を描画すること
	body := w.Body.String()
	for _, want := range []string{
		"devshelf-project-name",
		"devshelf-project-description",
		"devshelf-language",
		"devshelf-topics",
		"devshelf-topic",
		"devshelf-stats",
		"devshelf-homepage",
		"devshelf-footer",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("script missing card element %q", want)
		}
	}
}
