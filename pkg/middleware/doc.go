// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ベアラートークンの検証、リクエストID付与、アクセスログ、パニックリカバリ、
// CORS設定など、ゲートウェイと管理APIで共通して使用するミドルウェアを含む。
package middleware
