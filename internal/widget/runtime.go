package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nishant/devshelf/internal/model"
)

const (
	// MarkerClass はマウントポイントを示すマーカークラス。
	MarkerClass = "devshelf-widget"
	// AttrShowcaseID はマウントポイントが参照するショーケースIDの属性名。
	AttrShowcaseID = "data-showcase-id"

	// attrState はランタイムがマウントポイントに記録する処理状態の属性名。
	// この属性の有無でマウント済みかを判定する（同一マウントへの再適用を防ぐ）。
	attrState = "data-devshelf-state"

	stateLoading = "loading"
	stateReady   = "ready"
	stateError   = "error"

	// DefaultScanDepth はマウントポイント探索のデフォルト深さ。
	DefaultScanDepth = 3

	// DefaultFetchTimeout はショーケース取得のデフォルトタイムアウト。
	DefaultFetchTimeout = 10 * time.Second
)

// Fetcher はショーケースレコードの取得インターフェース。
type Fetcher interface {
	FetchShowcase(ctx context.Context, id string) (*model.ShowcaseRecord, error)
}

// Runtime はウィジェットのマウント処理を実行する。
//
// マウントポイントごとに独立して動作する: ローディング表示を同期的に
// 注入した後、バックグラウンドでショーケースを取得し、成功すれば
// ショーケース本体を、失敗すれば固定のフォールバックを描画する。
// 1つのマウントの失敗が他のマウントへ波及することはない。
type Runtime struct {
	fetcher  Fetcher
	renderer *Renderer
	timeout  time.Duration
	logger   *slog.Logger

	mountMu sync.Mutex
	wg      sync.WaitGroup
}

// NewRuntime はRuntimeを生成する。
// timeoutが0以下の場合はDefaultFetchTimeoutを使用する。
func NewRuntime(fetcher Fetcher, renderer *Renderer, timeout time.Duration, logger *slog.Logger) *Runtime {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Runtime{
		fetcher:  fetcher,
		renderer: renderer,
		timeout:  timeout,
		logger:   logger,
	}
}

// Bootstrap はドキュメント内の既存マウントポイントをすべてマウントし、
// 以降に追加されるノードの監視を開始する。
func (rt *Runtime) Bootstrap(doc *Document) {
	for _, node := range doc.QueryByClass(MarkerClass, DefaultScanDepth) {
		rt.Mount(node)
	}
	ObserveMounts(doc, rt, DefaultScanDepth)
}

// Mount は1つのマウントポイントを処理する。
//
//   - すでにマウント済みのノードは何もしない（再適用しても表示は変わらない）。
//   - ショーケースID属性を持たないノードは不活性のまま放置する。
//   - それ以外はローディング表示を同期的に注入し、取得と描画を
//     バックグラウンドで開始する。
func (rt *Runtime) Mount(node *Node) {
	rt.mountMu.Lock()
	if node.HasAttr(attrState) {
		rt.mountMu.Unlock()
		return
	}
	if !node.HasClass(MarkerClass) {
		rt.mountMu.Unlock()
		return
	}

	id := node.Attr(AttrShowcaseID)
	if id == "" {
		// 不活性: マーカークラスがあってもID属性がなければ何もしない
		rt.mountMu.Unlock()
		return
	}

	node.SetAttr(attrState, stateLoading)
	rt.mountMu.Unlock()

	node.SetContent(rt.renderer.RenderLoading())

	rt.wg.Add(1)
	go rt.load(node, id)
}

// Wait は進行中のマウント処理がすべて完了するまでブロックする。
// テストおよびシャットダウン用。
func (rt *Runtime) Wait() {
	rt.wg.Wait()
}

// load はショーケースを取得して描画する。マウントごとのゴルーチンで実行される。
func (rt *Runtime) load(node *Node, id string) {
	defer rt.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Error("panic during widget mount",
				slog.Any("panic", rec),
				slog.String("showcase_id", id),
			)
			node.SetContent(rt.renderer.RenderFallback())
			node.SetAttr(attrState, stateError)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), rt.timeout)
	defer cancel()

	record, err := rt.fetcher.FetchShowcase(ctx, id)
	if err != nil {
		rt.logger.Warn("failed to fetch showcase",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		node.SetContent(rt.renderer.RenderFallback())
		node.SetAttr(attrState, stateError)
		return
	}

	html, err := rt.renderer.RenderShowcase(record)
	if err != nil {
		rt.logger.Error("failed to render showcase",
			slog.String("showcase_id", id),
			slog.String("error", err.Error()),
		)
		node.SetContent(rt.renderer.RenderFallback())
		node.SetAttr(attrState, stateError)
		return
	}

	node.SetContent(html)
	node.SetAttr(attrState, stateReady)
}
