package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nishant/devshelf/internal/model"
	"github.com/nishant/devshelf/internal/widget"
)

// embedPageTemplateText は埋め込みページの外枠HTML。
// ショーケース本体はサーバー側でレンダリング済みのフラグメントを埋め込む。
const embedPageTemplateText = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; }
.devshelf-widget { max-width: 720px; margin: 0 auto; padding: 16px; }
</style>
</head>
<body>
<div class="devshelf-widget">{{.Content}}</div>
</body>
</html>
`

// EmbedHandler はiframe埋め込み用のサーバーレンダリングページを返すハンドラー。
type EmbedHandler struct {
	resolver ShowcaseRecordResolver
	renderer *widget.Renderer
	pageTmpl *template.Template
}

// NewEmbedHandler はEmbedHandlerを生成する。
func NewEmbedHandler(resolver ShowcaseRecordResolver) *EmbedHandler {
	return &EmbedHandler{
		resolver: resolver,
		renderer: widget.NewRenderer(),
		pageTmpl: template.Must(template.New("embed_page").Parse(embedPageTemplateText)),
	}
}

// Get はショーケースをHTMLページとしてレンダリングする。
// GET /showcase/{id}/embed
//
// iframeでの埋め込みを許可するため、共通のX-Frame-Optionsヘッダーを
// このハンドラーでのみ取り除く。未検出・解決失敗時はフォールバック
// メッセージを表示したページを返す（埋め込み先でのエラー画面を避ける）。
func (h *EmbedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	title := "DevShelf"
	content := template.HTML(template.HTMLEscapeString(widget.FallbackMessage))
	statusCode := http.StatusOK

	record, err := h.resolver.ResolveRecord(r.Context(), id)
	if err != nil {
		// 未検出のみ404。不正レコードやストア障害は500で、ページ本文は
		// どちらも同じフォールバック表示にする。
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeShowcaseNotFound {
			statusCode = http.StatusNotFound
		} else {
			slog.Error("failed to resolve showcase for embed",
				slog.String("showcase_id", id),
				slog.String("error", err.Error()),
			)
			statusCode = http.StatusInternalServerError
		}
	} else {
		fragment, renderErr := h.renderer.RenderShowcase(record)
		if renderErr != nil {
			slog.Error("failed to render showcase",
				slog.String("showcase_id", id),
				slog.String("error", renderErr.Error()),
			)
			statusCode = http.StatusInternalServerError
		} else {
			title = record.User.Login + " - DevShelf"
			content = template.HTML(fragment)
		}
	}

	w.Header().Del("X-Frame-Options")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	h.pageTmpl.Execute(w, map[string]any{
		"Title":   title,
		"Content": content,
	})
}
