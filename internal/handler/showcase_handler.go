package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishant/devshelf/internal/metrics"
	"github.com/nishant/devshelf/internal/model"
)

// 公開ウィジェットAPIの固定エラーメッセージ。
// 内部状態（未検出/不正レコード/ストア障害の区別）を漏らさない。
const (
	publicMsgNotFound      = "Showcase not found"
	publicMsgInternalError = "Internal server error"
	publicMsgInvalidID     = "Invalid showcase id"
	publicMsgMalformed     = "Malformed showcase record"
)

// maxShowcasePayloadBytes は書き込みペイロードの上限サイズ。
const maxShowcasePayloadBytes = 1 << 20 // 1MiB

// ShowcaseResolverInterface はショーケースハンドラーが必要とするサービスインターフェース。
type ShowcaseResolverInterface interface {
	// Resolve は保存時のJSONドキュメントをバイト列のまま返す。
	Resolve(ctx context.Context, id string) ([]byte, error)
	// Store はペイロードを検証して保存する。
	Store(ctx context.Context, id string, payload []byte) error
}

// ShowcaseHandler は公開ウィジェットAPIのHTTPハンドラー。
// 認証なしで任意の埋め込み先サイトから呼ばれる。
type ShowcaseHandler struct {
	resolver ShowcaseResolverInterface
	metrics  metrics.MetricsCollector
}

// NewShowcaseHandler はShowcaseHandlerを生成する。
func NewShowcaseHandler(resolver ShowcaseResolverInterface, collector metrics.MetricsCollector) *ShowcaseHandler {
	return &ShowcaseHandler{
		resolver: resolver,
		metrics:  collector,
	}
}

// Get はショーケースを解決して保存時のJSONドキュメントをそのまま返す。
// GET /api/showcase/{id}
//
// 未検出は404、それ以外の失敗はすべて500で、ボディは一般的な
// メッセージのみ（詳細はログに記録する）。
func (h *ShowcaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	payload, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeShowcaseNotFound:
				h.metrics.RecordResolveNotFound()
				writePublicError(w, http.StatusNotFound, publicMsgNotFound)
				return
			case model.ErrCodeMalformedRecord:
				// 保存済みレコードの破損。未検出とは区別してログに残すが、
				// 公開APIのボディでは区別しない。
				h.metrics.RecordResolveMalformed()
				slog.Error("stored showcase is malformed",
					slog.String("showcase_id", id),
					slog.String("error", apiErr.Error()),
				)
				writePublicError(w, http.StatusInternalServerError, publicMsgInternalError)
				return
			}
		}

		slog.Error("failed to resolve showcase",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		writePublicError(w, http.StatusInternalServerError, publicMsgInternalError)
		return
	}

	h.metrics.RecordResolveSuccess()
	h.metrics.RecordResolveLatency(time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// Put はショーケースペイロードを保存する。
// POST /api/showcase/{id}
//
// 形状が成立しないペイロード（JSONオブジェクトでない、user.login /
// user.avatar_url / repositories配列を欠く）は書き込み時に400で拒否する。
// それ以外のフィールドは検証せず、送信されたバイト列をそのまま保存する。
func (h *ShowcaseHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxShowcasePayloadBytes))
	if err != nil {
		writePublicError(w, http.StatusBadRequest, publicMsgMalformed)
		return
	}

	if err := h.resolver.Store(r.Context(), id, body); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeInvalidShowcaseID:
				writePublicError(w, http.StatusBadRequest, publicMsgInvalidID)
				return
			case model.ErrCodeMalformedRecord:
				writePublicError(w, http.StatusBadRequest, publicMsgMalformed)
				return
			}
		}

		slog.Error("failed to store showcase",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		writePublicError(w, http.StatusInternalServerError, publicMsgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
