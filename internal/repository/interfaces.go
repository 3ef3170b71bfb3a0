// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/nishant/devshelf/internal/model"
)

// ShowcaseRepository はショーケースペイロードの永続化インターフェース。
//
// ペイロードは公開クライアントが送信したJSONドキュメントをバイト列のまま
// 保持する。取得時にバイト単位で往復させるためで、形状の検証と正規化は
// showcaseパッケージのリゾルバが担う。
//
// 契約: Putは同一IDに対してlast write wins（マージなし）。
// 更新・削除・一覧の操作は存在しない。再公開は新しいIDで新規レコードを作る。
type ShowcaseRepository interface {
	// Put はペイロードをIDで保存する。既存IDへの書き込みは上書きする。
	Put(ctx context.Context, id string, payload []byte) error

	// Get は指定IDのペイロードを取得する。
	// 見つからない場合は(nil, nil)を返す。エラーはストア障害のみ。
	Get(ctx context.Context, id string) ([]byte, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}
