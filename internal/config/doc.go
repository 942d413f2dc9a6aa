// Package config はbookgateの実行時設定を提供する。
//
// デフォルト値、YAML設定ファイル、環境変数の順に値を重ねて読み込む。
// サービスアカウントの秘密鍵はここで正規化されてから利用される。
package config
