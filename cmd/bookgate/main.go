// bookgateのエントリポイント。
// 書籍コンテンツゲートウェイの起動と、書籍レコード・トークンの管理コマンドを提供する。
//
// 使い方:
//
//	bookgate serve
//	bookgate book put <id> --url <index-url>
//	bookgate token --subject <uid>
package main

func main() {
	Execute()
}
