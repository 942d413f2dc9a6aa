// Package gateway は書籍コンテンツゲートウェイのHTTPサーバーを提供する。
//
// リーダー画面のiframeから呼ばれ、Refererとベアラートークンを確認したうえで
// レコードストアから実際のコンテンツURLを引き、上流のHTMLを取得して
// baseタグと保護スクリプトを挿入して返す。リクエスト間で状態は持たない。
// あわせて、コンテンツレコードを管理する管理APIも提供する。
package gateway
