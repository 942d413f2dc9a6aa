// Package identity はベアラートークンを検証するIdentity Verifierを提供する。
//
// トークンはRS256で署名されたJWTで、発行者とオーディエンスはプロジェクトIDに紐づく。
// kidヘッダーを持つトークンは公開証明書セットで、持たないトークンは
// サービスアカウント自身の公開鍵で検証する。
// Verifierはプロセス起動時に一度だけ生成し、ハンドラに注入して共有する。
package identity
