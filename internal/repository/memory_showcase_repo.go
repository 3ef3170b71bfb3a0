package repository

import (
	"context"
	"sync"
)

// MemoryShowcaseRepo はインメモリのショーケースリポジトリ。
// テストおよびDATABASE_URL未設定時の開発用バックエンド。
// プロセス再起動でレコードは失われる。この非耐久性は構築時の
// バックエンド選択に属する性質であり、ストア契約の一部ではない。
type MemoryShowcaseRepo struct {
	mu       sync.RWMutex
	payloads map[string][]byte
}

// NewMemoryShowcaseRepo はMemoryShowcaseRepoを生成する。
func NewMemoryShowcaseRepo() *MemoryShowcaseRepo {
	return &MemoryShowcaseRepo{
		payloads: make(map[string][]byte),
	}
}

// Put はペイロードをIDで保存する。既存IDへの書き込みは上書きする（last write wins）。
// 呼び出し元のバッファ変更から保護するためコピーを保持する。
func (r *MemoryShowcaseRepo) Put(ctx context.Context, id string, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[id] = cp
	return nil
}

// Get は指定IDのペイロードを取得する。見つからない場合は(nil, nil)を返す。
func (r *MemoryShowcaseRepo) Get(ctx context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payload, ok := r.payloads[id]
	if !ok {
		return nil, nil
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp, nil
}

// Len は保存されているレコード数を返す。テスト用。
func (r *MemoryShowcaseRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payloads)
}

// compile-time interface check
var _ ShowcaseRepository = (*MemoryShowcaseRepo)(nil)
