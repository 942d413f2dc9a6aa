package config

import "errors"

// 設定検証エラー。Validate() が返し、errors.Is で判定できる。
var (
	// ErrNoCanonicalOrigin は正規オリジンが設定されていない場合に返される。
	ErrNoCanonicalOrigin = errors.New("正規オリジン(CANONICAL_ORIGIN)が設定されていません")
	// ErrInvalidCanonicalOrigin は正規オリジンが絶対URLでない場合に返される。
	ErrInvalidCanonicalOrigin = errors.New("正規オリジンは scheme://host 形式の絶対URLである必要があります")
	// ErrIncompleteServiceAccount はサービスアカウントの3項目が揃っていない場合に返される。
	ErrIncompleteServiceAccount = errors.New("サービスアカウントにはプロジェクトID・メールアドレス・秘密鍵がすべて必要です")
	// ErrUnknownDatabaseDriver は未対応のデータベースドライバが指定された場合に返される。
	ErrUnknownDatabaseDriver = errors.New("未対応のデータベースドライバです（sqlite または postgres）")
	// ErrInvalidUpstreamTimeout は上流タイムアウトが負の値の場合に返される。
	ErrInvalidUpstreamTimeout = errors.New("上流タイムアウトは0以上である必要があります")
	// ErrConfigNotFound は明示された設定ファイルが存在しない場合に返される。
	ErrConfigNotFound = errors.New("設定ファイルが見つかりません")
)
