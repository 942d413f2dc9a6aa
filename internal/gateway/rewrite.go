package gateway

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// headOpen は挿入位置の目印となる開始タグ。
const headOpen = "<head>"

// protectionScriptFormat は保護スクリプトの雛形。
// iframe外で開かれた場合は正規オリジンへ移動させ、右クリックメニューを抑止する。
const protectionScriptFormat = `
<script>
  if (window.self === window.top) {
    window.location.href = %s;
  }
  document.addEventListener('contextmenu', function (e) { e.preventDefault(); });
</script>`

// BaseURL はコンテンツURLを最後の "/" の直後で切り詰めたディレクトリURLを返す。
// "/" を含まない場合は空文字列を返す。
func BaseURL(indexURL string) string {
	return indexURL[:strings.LastIndex(indexURL, "/")+1]
}

// BaseTag はbaseURLを指すbaseタグを返す。
func BaseTag(baseURL string) string {
	return `<base href="` + html.EscapeString(baseURL) + `">`
}

// ProtectionScript はcanonicalOriginへリダイレクトする保護スクリプトを返す。
func ProtectionScript(canonicalOrigin string) string {
	// json.Marshalは<>&をエスケープするのでscript要素内に安全に埋め込める
	target, _ := json.Marshal(canonicalOrigin)
	return fmt.Sprintf(protectionScriptFormat, target)
}

// Rewrite は文書の最初の "<head>" の直後にbaseタグと保護スクリプトを挿入する。
// "<head>" が無い場合は先頭に付け足す。HTMLとしては解釈しない単純な文字列置換で、
// コメントや属性値の中の "<head>" も区別しない。
func Rewrite(doc, baseURL, canonicalOrigin string) string {
	inject := BaseTag(baseURL) + ProtectionScript(canonicalOrigin)
	if strings.Contains(doc, headOpen) {
		return strings.Replace(doc, headOpen, headOpen+"\n"+inject, 1)
	}
	return inject + doc
}
