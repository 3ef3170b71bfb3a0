// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nishant/devshelf/internal/middleware"
	"github.com/nishant/devshelf/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// publicErrorResponse は公開ウィジェットAPIのエラーボディ。
// ワイヤ契約に従い、フラットな {"error": string} のみを返す。
type publicErrorResponse struct {
	Error string `json:"error"`
}

// writePublicError は公開APIのエラーレスポンスを書き込む。
// 内部のエラー詳細は含めない（詳細はログにのみ記録する）。
func writePublicError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, publicErrorResponse{Error: message})
}

// handleDashboardError はサービス層から返されたエラーを
// ダッシュボードAPIの統一フォーマットに変換する。
func handleDashboardError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("unexpected error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIエラーコードをHTTPステータスコードに変換する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeShowcaseNotFound, model.ErrCodeGitHubUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidShowcaseID, model.ErrCodeMalformedRecord,
		model.ErrCodeEmptySelection, model.ErrCodeInvalidHomepageURL:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeGitHubRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeGitHubFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
