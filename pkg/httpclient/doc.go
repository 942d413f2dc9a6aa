// Package httpclient は外部HTTPエンドポイントへのアクセスを行うクライアントを提供する。
//
// コンテンツオリジンからの書籍HTMLの取得と、署名証明書などのJSON取得に使う。
// 取得したHTMLはContent-Typeの文字コード宣言に従ってUTF-8に変換される。
package httpclient
