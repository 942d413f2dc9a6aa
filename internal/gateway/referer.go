package gateway

import (
	"net/http"
	"strings"
)

// devHosts は開発環境として常に許可するRefererの部分文字列。
var devHosts = []string{"localhost", "127.0.0.1"}

// refererOf はリクエストの参照元を返す。Referer が無ければ Referrer を見る。
func refererOf(r *http.Request) string {
	if v := r.Header.Get("Referer"); v != "" {
		return v
	}
	return r.Header.Get("Referrer")
}

// refererAllowed は参照元が許可リストに含まれるかを判定する。
// クライアントが送るヘッダーに依存するため、ホットリンク抑止の目安にすぎない。
func refererAllowed(referer, canonicalHost string) bool {
	for _, h := range devHosts {
		if strings.Contains(referer, h) {
			return true
		}
	}
	return canonicalHost != "" && strings.Contains(referer, canonicalHost)
}
