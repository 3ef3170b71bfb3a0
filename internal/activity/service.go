// Package activity はショーケース掲載リポジトリの最近のコミット活動を取得する。
// GitHubが公開しているコミットAtomフィード（<リポジトリURL>/commits.atom）を
// リクエスト時に取得・パースするだけで、ショーケースレコード自体は変更しない。
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nishant/devshelf/internal/model"
	"github.com/nishant/devshelf/internal/security"
)

// CommitEntry は1件のコミット活動を表す。
type CommitEntry struct {
	Repository  string    `json:"repository"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ServiceConfig はアクティビティ取得の設定。
type ServiceConfig struct {
	FetchTimeout  time.Duration
	MaxConcurrent int
	MaxEntries    int
}

// Service はショーケース内の各リポジトリのコミットフィードを
// 並列に取得し、新しい順にマージして返す。
type Service struct {
	ssrfGuard security.SSRFGuardService
	logger    *slog.Logger
	config    ServiceConfig
}

// NewService はServiceを生成する。
// maxConcurrentが0以下の場合はデフォルト値4を使用する。
func NewService(ssrfGuard security.SSRFGuardService, logger *slog.Logger, config ServiceConfig) *Service {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 20
	}
	return &Service{
		ssrfGuard: ssrfGuard,
		logger:    logger,
		config:    config,
	}
}

// FetchActivity はレコード掲載の全リポジトリのコミット活動を取得する。
// 個別リポジトリのフェッチ失敗は警告ログを残してスキップし、
// 取得できた分だけを新しい順に返す（全滅しても空スライスを返す）。
func (s *Service) FetchActivity(ctx context.Context, record *model.ShowcaseRecord) ([]CommitEntry, error) {
	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	entries := make([]CommitEntry, 0)

	for _, repo := range record.Repositories {
		if repo.HTMLURL == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(r model.RepositorySummary) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			repoEntries, err := s.fetchRepoActivity(ctx, r)
			if err != nil {
				s.logger.Warn("コミットフィードの取得に失敗しました",
					slog.String("repository", r.Name),
					slog.String("error", err.Error()),
				)
				return
			}

			mu.Lock()
			entries = append(entries, repoEntries...)
			mu.Unlock()
		}(repo)
	}

	wg.Wait()

	// 新しい順にマージ
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PublishedAt.After(entries[j].PublishedAt)
	})

	if len(entries) > s.config.MaxEntries {
		entries = entries[:s.config.MaxEntries]
	}

	return entries, nil
}

// fetchRepoActivity は1リポジトリのコミットAtomフィードを取得・パースする。
func (s *Service) fetchRepoActivity(ctx context.Context, repo model.RepositorySummary) ([]CommitEntry, error) {
	feedURL := repo.HTMLURL + "/commits.atom"

	// SSRF検証
	if err := s.ssrfGuard.ValidateURL(feedURL); err != nil {
		return nil, fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	client := s.ssrfGuard.NewSafeClient(s.config.FetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "DevShelf/1.0")
	req.Header.Set("Accept", "application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("フィードのパースに失敗: %w", err)
	}

	entries := make([]CommitEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := CommitEntry{
			Repository: repo.Name,
			Title:      item.Title,
			Link:       item.Link,
		}
		if item.Author != nil {
			entry.Author = item.Author.Name
		}
		switch {
		case item.PublishedParsed != nil:
			entry.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			entry.PublishedAt = *item.UpdatedParsed
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
