package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nishant/devshelf/internal/model"
)

// HTTPFetcher は公開ウィジェットAPIからショーケースを取得するFetcher実装。
// 認証情報は一切送信しない。
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher はHTTPFetcherを生成する。
// baseURLはDevShelfサーバーのベースURL（例: https://devshelf.example）。
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchShowcase はGET /api/showcase/{id}でショーケースレコードを取得する。
// 200以外のレスポンスはすべてエラーとして返す（呼び出し側は
// 理由を問わずフォールバック表示に切り替える）。
func (f *HTTPFetcher) FetchShowcase(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
	endpoint := f.baseURL + "/api/showcase/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("showcase fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// エラーボディは {"error": string} 形式
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			return nil, fmt.Errorf("showcase fetch failed: %s (status %d)", errBody.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("showcase fetch failed with status %d", resp.StatusCode)
	}

	var record model.ShowcaseRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to parse showcase record: %w", err)
	}

	return &record, nil
}

// compile-time interface check
var _ Fetcher = (*HTTPFetcher)(nil)
