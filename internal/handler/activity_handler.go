package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nishant/devshelf/internal/activity"
	"github.com/nishant/devshelf/internal/metrics"
	"github.com/nishant/devshelf/internal/model"
)

// ShowcaseRecordResolver はレコード形式での解決に必要なインターフェース。
type ShowcaseRecordResolver interface {
	ResolveRecord(ctx context.Context, id string) (*model.ShowcaseRecord, error)
}

// ActivityServiceInterface はアクティビティハンドラーが必要とするサービスインターフェース。
type ActivityServiceInterface interface {
	FetchActivity(ctx context.Context, record *model.ShowcaseRecord) ([]activity.CommitEntry, error)
}

// ActivityHandler はショーケース掲載リポジトリの最近のコミット活動を返す
// 公開HTTPハンドラー。
type ActivityHandler struct {
	resolver ShowcaseRecordResolver
	activity ActivityServiceInterface
	metrics  metrics.MetricsCollector
}

// NewActivityHandler はActivityHandlerを生成する。
func NewActivityHandler(resolver ShowcaseRecordResolver, activitySvc ActivityServiceInterface, collector metrics.MetricsCollector) *ActivityHandler {
	return &ActivityHandler{
		resolver: resolver,
		activity: activitySvc,
		metrics:  collector,
	}
}

// activityResponse はアクティビティAPIのレスポンス。
type activityResponse struct {
	Entries []activity.CommitEntry `json:"entries"`
}

// Get はショーケース掲載リポジトリの最近のコミットをマージして返す。
// GET /api/showcase/{id}/activity
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.resolver.ResolveRecord(r.Context(), id)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeShowcaseNotFound {
			writePublicError(w, http.StatusNotFound, publicMsgNotFound)
			return
		}
		slog.Error("failed to resolve showcase for activity",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		writePublicError(w, http.StatusInternalServerError, publicMsgInternalError)
		return
	}

	entries, err := h.activity.FetchActivity(r.Context(), record)
	if err != nil {
		slog.Error("failed to fetch activity",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		writePublicError(w, http.StatusInternalServerError, publicMsgInternalError)
		return
	}

	h.metrics.RecordActivityFetch(len(entries))

	// entriesが空でもnullではなく[]を返す
	if entries == nil {
		entries = []activity.CommitEntry{}
	}
	writeJSON(w, http.StatusOK, activityResponse{Entries: entries})
}
