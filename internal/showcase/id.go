package showcase

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nishant/devshelf/internal/model"
)

// showcaseIDPattern はショーケースIDとして許可される文字のパターン。
// URLパスセグメントにエスケープなしで埋め込める文字のみを許可する。
var showcaseIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// NewShowcaseID は公開時のショーケースIDを生成する。
// 形式は <login>-<エポックミリ秒> で、同一ユーザーが再公開するたびに
// 新しいIDが発行される。
func NewShowcaseID(login string, now time.Time) string {
	return fmt.Sprintf("%s-%d", login, now.UnixMilli())
}

// ValidateShowcaseID はショーケースIDの形式を検証する。
// 空文字列、および英数字・ピリオド・ハイフン・アンダースコア以外を
// 含むIDはエラーを返す。
func ValidateShowcaseID(id string) error {
	if id == "" {
		return model.NewInvalidShowcaseIDError(id)
	}
	if !showcaseIDPattern.MatchString(id) {
		return model.NewInvalidShowcaseIDError(id)
	}
	return nil
}
