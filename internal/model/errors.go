// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はダッシュボードAPIの統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
//
// 公開ウィジェットAPI（/api/showcase/{id}）はこのフォーマットを使わず、
// ワイヤ契約で定められたフラットな {"error": string} ボディを返す。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, showcase, github, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeShowcaseNotFound  = "SHOWCASE_NOT_FOUND"
	ErrCodeInvalidShowcaseID = "INVALID_SHOWCASE_ID"
	ErrCodeMalformedRecord   = "MALFORMED_RECORD"
	ErrCodeEmptySelection    = "EMPTY_SELECTION"
	ErrCodeGitHubUserNotFound = "GITHUB_USER_NOT_FOUND"
	ErrCodeGitHubRateLimited  = "GITHUB_RATE_LIMITED"
	ErrCodeGitHubFetchFailed  = "GITHUB_FETCH_FAILED"
	ErrCodeInvalidHomepageURL = "INVALID_HOMEPAGE_URL"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
)

// NewShowcaseNotFoundError はショーケース未検出エラーを生成する。
func NewShowcaseNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeShowcaseNotFound,
		Message:  fmt.Sprintf("指定されたショーケースが見つかりません: %s", id),
		Category: "showcase",
		Action:   "ショーケースIDを確認してください。公開をやり直すと新しいIDが発行されます。",
	}
}

// NewInvalidShowcaseIDError は不正なショーケースIDエラーを生成する。
func NewInvalidShowcaseIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidShowcaseID,
		Message:  fmt.Sprintf("不正なショーケースIDです: %s", id),
		Category: "validation",
		Action:   "IDには英数字とピリオド、ハイフン、アンダースコアのみ使用できます。",
	}
}

// NewMalformedRecordError は不正なレコード形状エラーを生成する。
func NewMalformedRecordError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedRecord,
		Message:  fmt.Sprintf("ショーケースレコードの形式が不正です: %s", reason),
		Category: "validation",
		Action:   "user.login、user.avatar_url、repositories配列を含むJSONを送信してください。",
	}
}

// NewEmptySelectionError はリポジトリ未選択エラーを生成する。
func NewEmptySelectionError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptySelection,
		Message:  "公開するリポジトリが選択されていません。",
		Category: "validation",
		Action:   "少なくとも1つのリポジトリを選択してください。",
	}
}

// NewGitHubUserNotFoundError はGitHubユーザー未検出エラーを生成する。
func NewGitHubUserNotFoundError(login string) *APIError {
	return &APIError{
		Code:     ErrCodeGitHubUserNotFound,
		Message:  fmt.Sprintf("GitHubユーザーが見つかりません: %s", login),
		Category: "github",
		Action:   "ログイン名を確認してください。",
	}
}

// NewGitHubRateLimitedError はGitHub APIレート制限エラーを生成する。
func NewGitHubRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeGitHubRateLimited,
		Message:  "GitHub APIのレート制限に達しました。",
		Category: "github",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewGitHubFetchFailedError はGitHub API呼び出し失敗エラーを生成する。
func NewGitHubFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGitHubFetchFailed,
		Message:  fmt.Sprintf("GitHub APIの呼び出しに失敗しました: %s", reason),
		Category: "github",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidHomepageURLError は不正なホームページURLエラーを生成する。
func NewInvalidHomepageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidHomepageURL,
		Message:  fmt.Sprintf("リポジトリのホームページURLが不正です: %s", reason),
		Category: "validation",
		Action:   "公開されているWebサイトのURL（http:// または https://）のみ掲載できます。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "GitHubでログインしてください。",
	}
}
