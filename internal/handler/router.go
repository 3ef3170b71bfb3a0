package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nishant/devshelf/internal/metrics"
	"github.com/nishant/devshelf/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 公開ウィジェットAPI
	Resolver        ShowcaseResolverInterface
	RecordResolver  ShowcaseRecordResolver
	ActivityService ActivityServiceInterface

	// ダッシュボードAPI
	Publisher PublisherInterface

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ウィジェットスクリプト配信に使う公開ベースURLとフェッチタイムアウト
	PublicBaseURL      string
	WidgetFetchTimeout time.Duration

	// 可観測性
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ルートは2系統に分かれる:
//
//   - 公開系（/api/showcase/*, /widget.js, /showcase/{id}/embed）:
//     任意のオリジンから認証なしで呼ばれる。ワイルドカードCORSと
//     IPベースのレート制限のみを適用する。
//   - ダッシュボード系（/auth/*, /api/showcases）:
//     ダッシュボードのオリジンに限定したCORSを適用し、公開操作は
//     セッション認証と公開専用レート制限を要求する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通: panic回復 → セキュリティヘッダー → リクエストログ
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	showcaseHandler := NewShowcaseHandler(deps.Resolver, deps.Metrics)
	activityHandler := NewActivityHandler(deps.RecordResolver, deps.ActivityService, deps.Metrics)
	embedHandler := NewEmbedHandler(deps.RecordResolver)
	widgetHandler := NewWidgetHandler(deps.PublicBaseURL, deps.WidgetFetchTimeout, deps.Metrics)
	publishHandler := NewPublishHandler(deps.Publisher, deps.Metrics, deps.PublicBaseURL)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)

	// --- 公開ルート（埋め込み先サイトから呼ばれる） ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewPublicCORSMiddleware())
		r.Use(deps.RateLimiter.PublicMiddleware())

		r.Route("/api/showcase/{id}", func(r chi.Router) {
			r.Get("/", showcaseHandler.Get)
			r.Post("/", showcaseHandler.Put)
			r.Get("/activity", activityHandler.Get)
		})

		r.Get("/widget.js", widgetHandler.Get)
		r.Get("/showcase/{id}/embed", embedHandler.Get)
	})

	// --- ダッシュボードルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

		// 認証フロー（セッション不要）
		r.Route("/auth", func(r chi.Router) {
			r.Get("/github/login", authHandler.Login)
			r.Get("/github/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// 認証が必要なルート: Session → RateLimit(Publish)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
			r.Use(deps.RateLimiter.PublishMiddleware())

			r.Post("/api/showcases", publishHandler.Publish)
		})
	})

	// Prometheusメトリクス
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))

	// ヘルスチェック
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
