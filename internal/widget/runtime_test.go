package widget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nishant/devshelf/internal/model"
)

// stubFetcher はFetcherのテスト用実装。
type stubFetcher struct {
	fetchFunc  func(ctx context.Context, id string) (*model.ShowcaseRecord, error)
	fetchCount atomic.Int64
}

func (s *stubFetcher) FetchShowcase(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
	s.fetchCount.Add(1)
	return s.fetchFunc(ctx, id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func recordFor(login string) *model.ShowcaseRecord {
	return &model.ShowcaseRecord{
		User: model.UserProfile{Login: login, AvatarURL: "https://x/a.png"},
		Repositories: []model.RepositorySummary{
			{ID: 1, Name: "repo1", HTMLURL: "https://github.com/" + login + "/repo1", StargazersCount: 120},
		},
		CreatedAt: "2024-01-15T10:30:00.000Z",
	}
}

func newMountNode(showcaseID string) *Node {
	n := NewNode("div")
	n.SetAttr("class", MarkerClass)
	if showcaseID != "" {
		n.SetAttr(AttrShowcaseID, showcaseID)
	}
	return n
}

func TestRuntime_Mount_RendersShowcase(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			if id != "alice-123" {
				t.Errorf("id = %q, want %q", id, "alice-123")
			}
			return recordFor("alice"), nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("alice-123")
	rt.Mount(node)
	rt.Wait()

	content := node.Content()
	for _, want := range []string{"alice", "repo1", "120"} {
		if !strings.Contains(content, want) {
			t.Errorf("content does not contain %q", want)
		}
	}
	if node.Attr(attrState) != stateReady {
		t.Errorf("state = %q, want %q", node.Attr(attrState), stateReady)
	}
}

func TestRuntime_Mount_InjectsLoadingStateSynchronously(t *testing.T) {
	release := make(chan struct{})
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			<-release
			return recordFor("alice"), nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("alice-123")
	rt.Mount(node)

	// フェッチ完了前にローディング表示が注入されていること
	if !strings.Contains(node.Content(), "devshelf-loading") {
		t.Errorf("content = %q, want loading fragment before fetch completes", node.Content())
	}
	if node.Attr(attrState) != stateLoading {
		t.Errorf("state = %q, want %q", node.Attr(attrState), stateLoading)
	}

	close(release)
	rt.Wait()

	if node.Attr(attrState) != stateReady {
		t.Errorf("state after fetch = %q, want %q", node.Attr(attrState), stateReady)
	}
}

func TestRuntime_Mount_FallbackOnFetchError(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			return nil, errors.New("showcase fetch failed: Showcase not found (status 404)")
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("missing-123")
	rt.Mount(node)
	rt.Wait()

	if !strings.Contains(node.Content(), FallbackMessage) {
		t.Errorf("content = %q, want fallback message", node.Content())
	}
	if node.Attr(attrState) != stateError {
		t.Errorf("state = %q, want %q", node.Attr(attrState), stateError)
	}
}

// 1つのマウントの失敗が他のマウントへ波及しないこと
func TestRuntime_Mount_FailureIsIsolatedPerMount(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			if id == "broken-1" {
				return nil, errors.New("store unavailable")
			}
			return recordFor("alice"), nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	broken := newMountNode("broken-1")
	healthy := newMountNode("alice-123")
	rt.Mount(broken)
	rt.Mount(healthy)
	rt.Wait()

	if !strings.Contains(broken.Content(), FallbackMessage) {
		t.Errorf("broken mount content = %q, want fallback", broken.Content())
	}
	if !strings.Contains(healthy.Content(), "alice") {
		t.Errorf("healthy mount content = %q, want showcase", healthy.Content())
	}
}

// パニックするフェッチャーでもランタイムは落ちず、フォールバックを描画すること
func TestRuntime_Mount_RecoversFromPanic(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			panic("unexpected payload")
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("alice-123")
	rt.Mount(node)
	rt.Wait()

	if !strings.Contains(node.Content(), FallbackMessage) {
		t.Errorf("content = %q, want fallback message", node.Content())
	}
}

// 同じマウントへの再適用が表示を変えないこと
func TestRuntime_Mount_Idempotent(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			return recordFor("alice"), nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("alice-123")
	rt.Mount(node)
	rt.Wait()

	contentAfterFirst := node.Content()

	rt.Mount(node)
	rt.Wait()

	if got := fetcher.fetchCount.Load(); got != 1 {
		t.Errorf("fetch count = %d, want 1 (second mount must be a no-op)", got)
	}
	if node.Content() != contentAfterFirst {
		t.Error("content changed after re-mounting the same node")
	}
}

// ID属性のないマウントポイントは不活性のまま放置されること
func TestRuntime_Mount_InertWithoutShowcaseID(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			t.Fatal("fetch should not be called")
			return nil, nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := newMountNode("")
	rt.Mount(node)
	rt.Wait()

	if node.Content() != "" {
		t.Errorf("content = %q, want empty (inert mount)", node.Content())
	}
	if node.HasAttr(attrState) {
		t.Error("inert mount must not carry a state attribute")
	}
}

func TestRuntime_Mount_IgnoresNonMarkerNodes(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			t.Fatal("fetch should not be called")
			return nil, nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	node := NewNode("div")
	node.SetAttr("class", "sidebar")
	node.SetAttr(AttrShowcaseID, "alice-123")
	rt.Mount(node)
	rt.Wait()

	if node.Content() != "" {
		t.Errorf("content = %q, want empty", node.Content())
	}
}

func TestRuntime_Bootstrap_MountsExistingAndDynamicNodes(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFunc: func(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
			return recordFor("alice"), nil
		},
	}
	rt := NewRuntime(fetcher, NewRenderer(), time.Second, testLogger())

	doc := NewDocument()
	existing := newMountNode("alice-123")
	doc.Root().AppendChild(existing)

	rt.Bootstrap(doc)
	rt.Wait()

	if !strings.Contains(existing.Content(), "alice") {
		t.Errorf("existing mount content = %q, want showcase", existing.Content())
	}

	// Bootstrap後に追加されたマウントポイントも処理されること
	dynamic := newMountNode("alice-456")
	doc.AppendChild(doc.Root(), dynamic)
	rt.Wait()

	if !strings.Contains(dynamic.Content(), "alice") {
		t.Errorf("dynamic mount content = %q, want showcase", dynamic.Content())
	}
}
