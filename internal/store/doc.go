// Package store は書籍のコンテンツレコードを保持するレコードストアを提供する。
//
// レコードは公開IDから実際のコンテンツURL（indexURL）への対応を持つ。
// ゲートウェイは読み取りのみを行い、書き込みは管理APIとCLIから行う。
// 組み込みのSQLiteと、サーバー運用向けのPostgreSQLの2つの実装を持つ。
package store
