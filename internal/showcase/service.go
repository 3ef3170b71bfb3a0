// Package showcase はショーケースの解決と公開のビジネスロジックを提供する。
package showcase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nishant/devshelf/internal/model"
	"github.com/nishant/devshelf/internal/repository"
	"github.com/nishant/devshelf/internal/security"
)

// Resolver はショーケースIDからレコードを解決する。
//
// ストアはペイロードをバイト列のまま保持しているため、Resolveは
// 保存時のドキュメントをバイト単位で返す。形状の検証はここで行い、
// 壊れたレコードが公開APIから素通りしないようにする。
type Resolver struct {
	repo   repository.ShowcaseRepository
	logger *slog.Logger
}

// NewResolver はResolverを生成する。
func NewResolver(repo repository.ShowcaseRepository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve は指定IDのショーケースペイロードを取得する。
// 不正な形式のID、および存在しないIDはSHOWCASE_NOT_FOUNDを返す
// （公開APIではIDの形式不備と未登録を区別しない）。
// 保存済みペイロードが必須の形状を満たさない場合はMALFORMED_RECORDを返す。
func (r *Resolver) Resolve(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateShowcaseID(id); err != nil {
		return nil, model.NewShowcaseNotFoundError(id)
	}

	payload, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get showcase: %w", err)
	}
	if payload == nil {
		return nil, model.NewShowcaseNotFoundError(id)
	}

	if err := ValidateRecordShape(payload); err != nil {
		r.logger.Warn("stored showcase payload is malformed",
			slog.String("showcase_id", id),
			slog.String("reason", err.Error()),
		)
		return nil, err
	}

	return payload, nil
}

// ResolveRecord はペイロードを解決し、正規化されたレコードに変換する。
// 埋め込みページなどサーバー側でレンダリングする用途向け。
func (r *Resolver) ResolveRecord(ctx context.Context, id string) (*model.ShowcaseRecord, error) {
	payload, err := r.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var record model.ShowcaseRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, model.NewMalformedRecordError(err.Error())
	}
	return &record, nil
}

// Store はペイロードを検証してからIDで保存する。
// 書き込み時に形状を検証することで、読み出し側が壊れたレコードに
// 遭遇する機会を減らす（fail fast）。
// 同一IDへの書き込みは上書きとなる（last write wins）。
func (r *Resolver) Store(ctx context.Context, id string, payload []byte) error {
	if err := ValidateShowcaseID(id); err != nil {
		return err
	}
	if err := ValidateRecordShape(payload); err != nil {
		return err
	}

	if err := r.repo.Put(ctx, id, payload); err != nil {
		return fmt.Errorf("failed to put showcase: %w", err)
	}

	r.logger.Info("showcase stored",
		slog.String("showcase_id", id),
		slog.Int("payload_bytes", len(payload)),
	)
	return nil
}

// ValidateRecordShape はショーケースペイロードの必須形状を検証する。
// トップレベルがJSONオブジェクトであること、user.loginとuser.avatar_urlが
// 空でない文字列であること、repositoriesが配列であることを要求する。
// それ以外のフィールドは検証せず、保存時の内容をそのまま通す。
func ValidateRecordShape(payload []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return model.NewMalformedRecordError("payload is not a JSON object")
	}

	userRaw, ok := top["user"]
	if !ok {
		return model.NewMalformedRecordError("missing user")
	}
	var user map[string]json.RawMessage
	if err := json.Unmarshal(userRaw, &user); err != nil {
		return model.NewMalformedRecordError("user is not a JSON object")
	}

	var login string
	if raw, ok := user["login"]; ok {
		_ = json.Unmarshal(raw, &login)
	}
	if login == "" {
		return model.NewMalformedRecordError("user.login is required")
	}

	var avatarURL string
	if raw, ok := user["avatar_url"]; ok {
		_ = json.Unmarshal(raw, &avatarURL)
	}
	if avatarURL == "" {
		return model.NewMalformedRecordError("user.avatar_url is required")
	}

	reposRaw, ok := top["repositories"]
	if !ok {
		return model.NewMalformedRecordError("missing repositories")
	}
	var repos []json.RawMessage
	if err := json.Unmarshal(reposRaw, &repos); err != nil {
		return model.NewMalformedRecordError("repositories is not an array")
	}

	return nil
}

// GitHubGateway はPublisherが必要とするGitHub API操作のインターフェース。
type GitHubGateway interface {
	GetAuthenticatedUser(ctx context.Context, accessToken string) (*model.UserProfile, error)
	ListPublicRepositories(ctx context.Context, accessToken, login string) ([]model.RepositorySummary, error)
}

// Publisher はログイン済みユーザーのショーケースを公開する。
// 公開時点のGitHubプロフィールとリポジトリ情報をスナップショットし、
// 新しいIDの下にイミュータブルなレコードとして保存する。
type Publisher struct {
	github    GitHubGateway
	repo      repository.ShowcaseRepository
	sanitizer security.TextSanitizerService
	ssrfGuard security.SSRFGuardService
	logger    *slog.Logger

	// テスト用に差し替え可能な現在時刻
	now func() time.Time
}

// NewPublisher はPublisherを生成する。
func NewPublisher(
	github GitHubGateway,
	repo repository.ShowcaseRepository,
	sanitizer security.TextSanitizerService,
	ssrfGuard security.SSRFGuardService,
	logger *slog.Logger,
) *Publisher {
	return &Publisher{
		github:    github,
		repo:      repo,
		sanitizer: sanitizer,
		ssrfGuard: ssrfGuard,
		logger:    logger,
		now:       time.Now,
	}
}

// createdAtFormat は公開時刻のISO8601表記（ミリ秒精度、UTC）。
const createdAtFormat = "2006-01-02T15:04:05.000Z"

// Publish は選択されたリポジトリでショーケースを公開し、発行したIDと
// レコードを返す。レコードのrepositoriesは選択された並び順を保持する
// （GitHub APIの返却順ではなく、呼び出し側が指定した順序が掲載順になる）。
//
// プロフィールとリポジトリ情報は公開時点のGitHubからスナップショットし、
// 自由記述フィールド（bio、description）はサニタイズしてから保存する。
// ホームページURLはSSRF防止の観点から事前検証し、危険なURLが含まれる
// 場合は公開自体を拒否する。
func (p *Publisher) Publish(ctx context.Context, accessToken string, selectedNames []string) (string, *model.ShowcaseRecord, error) {
	if len(selectedNames) == 0 {
		return "", nil, model.NewEmptySelectionError()
	}

	profile, err := p.github.GetAuthenticatedUser(ctx, accessToken)
	if err != nil {
		return "", nil, err
	}

	repos, err := p.github.ListPublicRepositories(ctx, accessToken, profile.Login)
	if err != nil {
		return "", nil, err
	}

	byName := make(map[string]model.RepositorySummary, len(repos))
	for _, repo := range repos {
		byName[repo.Name] = repo
	}

	// 選択順がそのまま掲載順になる。選択に含まれない名前はスキップし、
	// 重複は初出のみ採用する。
	chosen := make([]model.RepositorySummary, 0, len(selectedNames))
	seen := make(map[string]bool, len(selectedNames))
	for _, name := range selectedNames {
		repo, ok := byName[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		repo.Description = p.sanitizer.Sanitize(repo.Description)
		if repo.Homepage != "" {
			if err := p.ssrfGuard.ValidateURL(repo.Homepage); err != nil {
				return "", nil, model.NewInvalidHomepageURLError(
					fmt.Sprintf("%s: %s", repo.Name, err.Error()),
				)
			}
		}
		chosen = append(chosen, repo)
	}

	if len(chosen) == 0 {
		return "", nil, model.NewEmptySelectionError()
	}

	profile.Name = p.sanitizer.Sanitize(profile.Name)
	profile.Bio = p.sanitizer.Sanitize(profile.Bio)

	now := p.now()
	id := NewShowcaseID(profile.Login, now)
	record := &model.ShowcaseRecord{
		User:         *profile,
		Repositories: chosen,
		CreatedAt:    now.UTC().Format(createdAtFormat),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal showcase record: %w", err)
	}

	if err := p.repo.Put(ctx, id, payload); err != nil {
		return "", nil, fmt.Errorf("failed to put showcase: %w", err)
	}

	p.logger.Info("showcase published",
		slog.String("showcase_id", id),
		slog.String("login", profile.Login),
		slog.Int("repository_count", len(chosen)),
	)

	return id, record, nil
}
