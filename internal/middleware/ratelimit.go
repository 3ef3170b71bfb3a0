package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	PublicRate      rate.Limit    // 公開ウィジェットAPIのレート（req/sec）。240/60 = 4 req/sec
	PublicBurst     int           // 公開ウィジェットAPIのバーストサイズ
	PublishRate     rate.Limit    // ショーケース公開のレート（req/sec）。10/60
	PublishBurst    int           // ショーケース公開のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 公開ウィジェットAPI 240 req/min/IP、ショーケース公開 10 req/min/IP
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PublicRate:      rate.Limit(240.0 / 60.0), // 4 req/sec
		PublicBurst:     240,
		PublishRate:     rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		PublishBurst:    10,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// 公開ウィジェットAPIは未認証のため、ユーザーIDではなく
// クライアントIPをキーとして制限する。
// 公開APIのレート制限とショーケース公開のレート制限の2種類を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	publicMu       sync.RWMutex
	publicLimiters map[string]*clientLimiter

	publishMu       sync.RWMutex
	publishLimiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		publicLimiters:  make(map[string]*clientLimiter),
		publishLimiters: make(map[string]*clientLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// PublicMiddleware は公開ウィジェットAPIのレート制限ミドルウェアを返す。
// 制限超過時は公開APIのワイヤ契約に従い、フラットな
// {"error": string} ボディで429を返す。
func (rl *RateLimiter) PublicMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)
			limiter := rl.getOrCreatePublicLimiter(clientIP)

			if !limiter.Allow() {
				writePublicRateLimitResponse(w, rl.config.PublicRate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", clientIP),
					slog.String("limit_type", "public"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PublishMiddleware はショーケース公開専用のレート制限ミドルウェアを返す。
// 公開APIのレート制限とは独立に動作する。
func (rl *RateLimiter) PublishMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)
			limiter := rl.getOrCreatePublishLimiter(clientIP)

			if !limiter.Allow() {
				writeDashboardRateLimitResponse(w, rl.config.PublishRate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", clientIP),
					slog.String("limit_type", "publish"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PublicLimiterCount は現在管理されている公開APIリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) PublicLimiterCount() int {
	rl.publicMu.RLock()
	defer rl.publicMu.RUnlock()
	return len(rl.publicLimiters)
}

// PublishLimiterCount は現在管理されている公開操作リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) PublishLimiterCount() int {
	rl.publishMu.RLock()
	defer rl.publishMu.RUnlock()
	return len(rl.publishLimiters)
}

// ClientIP はリクエストからクライアントIPを特定する。
// リバースプロキシ経由の場合はX-Forwarded-Forの先頭エントリを使用する。
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getOrCreatePublicLimiter はクライアントの公開APIリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreatePublicLimiter(clientIP string) *rate.Limiter {
	rl.publicMu.RLock()
	cl, exists := rl.publicLimiters[clientIP]
	rl.publicMu.RUnlock()

	if exists {
		rl.publicMu.Lock()
		cl.lastAccess = time.Now()
		rl.publicMu.Unlock()
		return cl.limiter
	}

	rl.publicMu.Lock()
	defer rl.publicMu.Unlock()

	// ダブルチェック
	if cl, exists := rl.publicLimiters[clientIP]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.PublicRate, rl.config.PublicBurst)
	rl.publicLimiters[clientIP] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// getOrCreatePublishLimiter はクライアントの公開操作リミッターを取得または作成する。
func (rl *RateLimiter) getOrCreatePublishLimiter(clientIP string) *rate.Limiter {
	rl.publishMu.RLock()
	cl, exists := rl.publishLimiters[clientIP]
	rl.publishMu.RUnlock()

	if exists {
		rl.publishMu.Lock()
		cl.lastAccess = time.Now()
		rl.publishMu.Unlock()
		return cl.limiter
	}

	rl.publishMu.Lock()
	defer rl.publishMu.Unlock()

	// ダブルチェック
	if cl, exists := rl.publishLimiters[clientIP]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.PublishRate, rl.config.PublishBurst)
	rl.publishLimiters[clientIP] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.publicMu.Lock()
	for clientIP, cl := range rl.publicLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.publicLimiters, clientIP)
		}
	}
	rl.publicMu.Unlock()

	rl.publishMu.Lock()
	for clientIP, cl := range rl.publishLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.publishLimiters, clientIP)
		}
	}
	rl.publishMu.Unlock()
}

// retryAfterSeconds は1トークンが補充されるまでの推定秒数を返す。
func retryAfterSeconds(r rate.Limit) int {
	sec := int(math.Ceil(1.0 / float64(r)))
	if sec < 1 {
		sec = 1
	}
	return sec
}

// writePublicRateLimitResponse は公開APIのワイヤ契約に従う429レスポンスを書き込む。
func writePublicRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(r)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"error": "Too many requests",
	})
}

// writeDashboardRateLimitResponse はダッシュボードAPIの統一フォーマットで429レスポンスを書き込む。
func writeDashboardRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(r)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "リクエストが多すぎます。",
		"category": "system",
		"action":   "しばらく待ってから再度お試しください。",
	})
}
