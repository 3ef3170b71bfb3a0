// Package model はドメインモデルを定義する。
package model

// UserProfile は公開時点のGitHubユーザープロフィールのスナップショットを表す。
// loginとavatar_url以外のフィールドは任意。
// JSONフィールド名はGitHub REST APIのユーザースキーマに合わせる。
type UserProfile struct {
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PublicRepos int    `json:"public_repos,omitempty"`
	Followers   int    `json:"followers,omitempty"`
	Following   int    `json:"following,omitempty"`
}

// RepositorySummary はショーケースに掲載された1つのプロジェクトを表す。
// JSONフィールド名はGitHub REST APIのリポジトリスキーマに合わせる。
// Topicsの並び順は公開時の順序を保持する。
type RepositorySummary struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage,omitempty"`
	Language        string   `json:"language,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	WatchersCount   int      `json:"watchers_count"`
}

// ShowcaseRecord は永続化されるショーケースの単位を表す。
// 一度の公開操作でアトミックに作成され、以降は更新されない。
// 再公開は新しいIDの下に新しいレコードを作成する。
//
// CreatedAtは公開時に設定されるISO8601文字列。
// 公開クライアントが送信した表記（ミリ秒精度など）をそのまま
// 往復させるため、time.Timeではなく文字列で保持する。
type ShowcaseRecord struct {
	User         UserProfile         `json:"user"`
	Repositories []RepositorySummary `json:"repositories"`
	CreatedAt    string              `json:"createdAt"`
}

// RepositoryCount は掲載リポジトリ数を返す。
func (r *ShowcaseRecord) RepositoryCount() int {
	return len(r.Repositories)
}
