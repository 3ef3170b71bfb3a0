// Package github はGitHub REST APIのクライアントを提供する。
// 公開時のプロフィールスナップショットとリポジトリ一覧の取得に使用する。
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nishant/devshelf/internal/model"
)

const (
	// defaultBaseURL はGitHub REST APIのベースURL。
	defaultBaseURL = "https://api.github.com"
	// maxReposPerPage は1リクエストで取得するリポジトリ数。
	maxReposPerPage = 100
	// acceptHeader はGitHub REST API v3のAcceptヘッダー。
	acceptHeader = "application/vnd.github.v3+json"
)

// Client はGitHub REST APIのクライアント。
// アクセストークンはリクエストごとに呼び出し元から受け取る
// （セッションごとにトークンが異なるため、クライアントには保持しない）。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    defaultBaseURL,
	}
}

// githubUser はGitHubユーザーAPIのレスポンスのうち必要なフィールド。
type githubUser struct {
	Login       string `json:"login"`
	AvatarURL   string `json:"avatar_url"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// githubRepo はGitHubリポジトリAPIのレスポンスのうち必要なフィールド。
type githubRepo struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	WatchersCount   int      `json:"watchers_count"`
	Private         bool     `json:"private"`
}

// GetAuthenticatedUser はアクセストークンに紐づくユーザーのプロフィールを取得する。
// GET /user
func (c *Client) GetAuthenticatedUser(ctx context.Context, accessToken string) (*model.UserProfile, error) {
	var user githubUser
	if err := c.getJSON(ctx, "/user", accessToken, &user); err != nil {
		return nil, err
	}
	profile := toUserProfile(&user)
	return &profile, nil
}

// GetUser は指定ログイン名のユーザーの公開プロフィールを取得する。
// GET /users/{login}
func (c *Client) GetUser(ctx context.Context, accessToken, login string) (*model.UserProfile, error) {
	var user githubUser
	path := "/users/" + url.PathEscape(login)
	if err := c.getJSON(ctx, path, accessToken, &user); err != nil {
		return nil, err
	}
	profile := toUserProfile(&user)
	return &profile, nil
}

// ListPublicRepositories は指定ログイン名のユーザーの公開リポジトリを取得する。
// GET /users/{login}/repos?sort=updated&per_page=100
// privateリポジトリはレスポンスから除外する（ショーケースには公開リポジトリのみ掲載する）。
func (c *Client) ListPublicRepositories(ctx context.Context, accessToken, login string) ([]model.RepositorySummary, error) {
	var repos []githubRepo
	path := fmt.Sprintf("/users/%s/repos?sort=updated&per_page=%d", url.PathEscape(login), maxReposPerPage)
	if err := c.getJSON(ctx, path, accessToken, &repos); err != nil {
		return nil, err
	}

	summaries := make([]model.RepositorySummary, 0, len(repos))
	for _, repo := range repos {
		if repo.Private {
			continue
		}
		summaries = append(summaries, toRepositorySummary(&repo))
	}

	return summaries, nil
}

// getJSON はGitHub APIへGETリクエストを送り、レスポンスをデコードする。
// 404はGITHUB_USER_NOT_FOUND、403はGITHUB_RATE_LIMITEDにマッピングする。
func (c *Client) getJSON(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if accessToken != "" {
		req.Header.Set("Authorization", "token "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewGitHubFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewGitHubFetchFailedError(err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.NewGitHubUserNotFoundError(path)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("github api rate limited",
			slog.String("path", path),
		)
		return model.NewGitHubRateLimitedError()
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("github api returned unexpected status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return model.NewGitHubFetchFailedError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return model.NewGitHubFetchFailedError("invalid JSON response")
	}

	return nil
}

// toUserProfile はGitHubユーザーレスポンスからプロフィールスナップショットに変換する。
func toUserProfile(u *githubUser) model.UserProfile {
	return model.UserProfile{
		Login:       u.Login,
		AvatarURL:   u.AvatarURL,
		Name:        u.Name,
		Bio:         u.Bio,
		PublicRepos: u.PublicRepos,
		Followers:   u.Followers,
		Following:   u.Following,
	}
}

// toRepositorySummary はGitHubリポジトリレスポンスから掲載用サマリに変換する。
func toRepositorySummary(r *githubRepo) model.RepositorySummary {
	return model.RepositorySummary{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		HTMLURL:         r.HTMLURL,
		Homepage:        r.Homepage,
		Language:        r.Language,
		Topics:          r.Topics,
		StargazersCount: r.StargazersCount,
		ForksCount:      r.ForksCount,
		WatchersCount:   r.WatchersCount,
	}
}
