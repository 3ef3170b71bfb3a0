package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresShowcaseRepo はPostgreSQLを使用したショーケースリポジトリ。
// ペイロードはJSONBカラムに保存する。レコードはプロセス再起動後も残る
// （インメモリバックエンドと異なり耐久性がある）。
type PostgresShowcaseRepo struct {
	db *sql.DB
}

// NewPostgresShowcaseRepo はPostgresShowcaseRepoを生成する。
func NewPostgresShowcaseRepo(db *sql.DB) *PostgresShowcaseRepo {
	return &PostgresShowcaseRepo{db: db}
}

// Put はペイロードをIDで保存する。既存IDへの書き込みは上書きする（last write wins）。
func (r *PostgresShowcaseRepo) Put(ctx context.Context, id string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO showcases (id, payload, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		id, payload,
	)
	if err != nil {
		return fmt.Errorf("ショーケースの保存に失敗しました: %w", err)
	}
	return nil
}

// Get は指定IDのペイロードを取得する。見つからない場合は(nil, nil)を返す。
func (r *PostgresShowcaseRepo) Get(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM showcases WHERE id = $1`,
		id,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ショーケースの取得に失敗しました: %w", err)
	}

	return payload, nil
}

// compile-time interface check
var _ ShowcaseRepository = (*PostgresShowcaseRepo)(nil)
