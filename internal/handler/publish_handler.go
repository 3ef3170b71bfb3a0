package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nishant/devshelf/internal/metrics"
	"github.com/nishant/devshelf/internal/middleware"
	"github.com/nishant/devshelf/internal/model"
)

// PublisherInterface は公開ハンドラーが必要とするサービスインターフェース。
type PublisherInterface interface {
	Publish(ctx context.Context, accessToken string, selectedNames []string) (string, *model.ShowcaseRecord, error)
}

// PublishHandler はショーケース公開のHTTPハンドラー。
// セッションミドルウェアの通過を前提とする（ダッシュボード専用）。
type PublishHandler struct {
	publisher PublisherInterface
	metrics   metrics.MetricsCollector
	baseURL   string
}

// NewPublishHandler はPublishHandlerを生成する。
// baseURLは埋め込みスニペットの生成に使用する公開URL。
func NewPublishHandler(publisher PublisherInterface, collector metrics.MetricsCollector, baseURL string) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		metrics:   collector,
		baseURL:   baseURL,
	}
}

// publishRequest は公開リクエストのボディ。
type publishRequest struct {
	Repositories []string `json:"repositories"`
}

// publishResponse は公開成功時のレスポンス。
// 発行IDとレコードに加え、埋め込み先サイトに貼り付けるスニペットを返す。
type publishResponse struct {
	ID     string                `json:"id"`
	Record *model.ShowcaseRecord `json:"record"`
	Embed  string                `json:"embed"`
}

// Publish はログイン中ユーザーのショーケースを公開する。
// POST /api/showcases
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの形式が不正です。",
			Category: "validation",
			Action:   "repositories配列を含むJSONを送信してください。",
		})
		return
	}

	slog.Info("publish requested",
		slog.String("request_id", requestID),
		slog.String("login", session.UserLogin),
		slog.Int("selected_count", len(req.Repositories)),
	)

	id, record, err := h.publisher.Publish(r.Context(), session.AccessToken, req.Repositories)
	if err != nil {
		slog.Warn("publish failed",
			slog.String("request_id", requestID),
			slog.String("login", session.UserLogin),
			slog.String("error", err.Error()),
		)
		handleDashboardError(w, err)
		return
	}

	h.metrics.RecordPublish(record.RepositoryCount())

	slog.Info("publish completed",
		slog.String("request_id", requestID),
		slog.String("showcase_id", id),
		slog.Int("repository_count", record.RepositoryCount()),
	)

	writeJSON(w, http.StatusCreated, publishResponse{
		ID:     id,
		Record: record,
		Embed:  buildEmbedSnippet(h.baseURL, id),
	})
}

// buildEmbedSnippet は埋め込み先サイトに貼り付けるHTMLスニペットを生成する。
func buildEmbedSnippet(baseURL, id string) string {
	return fmt.Sprintf(
		`<div class="devshelf-widget" data-showcase-id="%s"></div>`+"\n"+
			`<script src="%s/widget.js" async></script>`,
		id, baseURL,
	)
}
