package widget

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/nishant/devshelf/internal/model"
)

// FallbackMessage はショーケースを表示できない場合に描画する固定メッセージ。
// 未検出・取得失敗・不正レコードのいずれでも同じ文言を使い、
// 埋め込み先ページに内部状態を漏らさない。
const FallbackMessage = "Showcase not found or unavailable"

// loadingFragment はフェッチ中に表示するローディング状態のフラグメント。
const loadingFragment = `<div class="devshelf-loading" role="status">Loading showcase…</div>`

// showcaseTemplateText はショーケース本体のHTMLフラグメント。
// ユーザーヘッダー、プロジェクトグリッド、帰属フッターで構成する。
const showcaseTemplateText = `<div class="devshelf-container">
  <div class="devshelf-header">
    <img class="devshelf-avatar" src="{{.User.AvatarURL}}" alt="{{.User.Login}}">
    <div class="devshelf-user">
      <span class="devshelf-login">{{.User.Login}}</span>
      {{- if .User.Name}}
      <span class="devshelf-name">{{.User.Name}}</span>
      {{- end}}
      {{- if .User.Bio}}
      <p class="devshelf-bio">{{.User.Bio}}</p>
      {{- end}}
    </div>
  </div>
  <div class="devshelf-grid">
    {{- range .Repositories}}
    <div class="devshelf-project">
      <a class="devshelf-project-name" href="{{.HTMLURL}}" target="_blank" rel="noopener noreferrer">{{.Name}}</a>
      {{- if .Description}}
      <p class="devshelf-project-description">{{.Description}}</p>
      {{- end}}
      {{- if .Language}}
      <span class="devshelf-language">{{.Language}}</span>
      {{- end}}
      {{- if .Topics}}
      <div class="devshelf-topics">
        {{- range .Topics}}
        <span class="devshelf-topic">{{.}}</span>
        {{- end}}
      </div>
      {{- end}}
      <div class="devshelf-stats">
        <span class="devshelf-stars">★ {{.StargazersCount}}</span>
        <span class="devshelf-forks">⑂ {{.ForksCount}}</span>
        <span class="devshelf-watchers">👁 {{.WatchersCount}}</span>
      </div>
      {{- if .Homepage}}
      <a class="devshelf-homepage" href="{{.Homepage}}" target="_blank" rel="noopener noreferrer">Visit site</a>
      {{- end}}
    </div>
    {{- end}}
  </div>
  <div class="devshelf-footer">Powered by DevShelf</div>
</div>`

// fallbackFragment はフォールバック表示のフラグメント。
var fallbackFragment = fmt.Sprintf(`<div class="devshelf-fallback">%s</div>`, FallbackMessage)

// Renderer はショーケースレコードをHTMLフラグメントに描画する。
// 自由記述フィールドは公開時にサニタイズ済みだが、
// html/templateのコンテキストエスケープで二重に防御する。
type Renderer struct {
	showcaseTmpl *template.Template
}

// NewRenderer はRendererを生成する。
func NewRenderer() *Renderer {
	return &Renderer{
		showcaseTmpl: template.Must(template.New("showcase").Parse(showcaseTemplateText)),
	}
}

// RenderLoading はローディング状態のフラグメントを返す。
func (r *Renderer) RenderLoading() string {
	return loadingFragment
}

// RenderFallback はフォールバック表示のフラグメントを返す。
func (r *Renderer) RenderFallback() string {
	return fallbackFragment
}

// RenderShowcase はショーケースレコードをHTMLフラグメントに描画する。
func (r *Renderer) RenderShowcase(record *model.ShowcaseRecord) (string, error) {
	var sb strings.Builder
	if err := r.showcaseTmpl.Execute(&sb, record); err != nil {
		return "", fmt.Errorf("failed to render showcase: %w", err)
	}
	return sb.String(), nil
}
