// Package model はドメインモデルを定義する。
package model

import "time"

// Session はGitHubログイン済みユーザーのセッションを表す。
// DevShelfはユーザーテーブルを持たない（プロフィールは公開時に
// GitHubからスナップショットする）ため、セッション自体が
// GitHubログイン名とアクセストークンを保持する。
type Session struct {
	ID          string
	UserLogin   string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired はセッションが期限切れかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
