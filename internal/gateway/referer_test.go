package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestRefererAllowed はReferer許可リストの判定を検証する。
func TestRefererAllowed(t *testing.T) {
	t.Parallel()

	const host = "vault.example.com"
	tests := []struct {
		name    string
		referer string
		want    bool
	}{
		{"正規オリジンは許可されること", "https://vault.example.com/reader/abc123", true},
		{"localhostは許可されること", "http://localhost:5173/reader/abc", true},
		{"127.0.0.1は許可されること", "http://127.0.0.1:8888/", true},
		{"他のオリジンは拒否されること", "https://evil.example.net/", false},
		{"空のRefererは拒否されること", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := refererAllowed(tt.referer, host); got != tt.want {
				t.Errorf("refererAllowed(%q) = %v, want %v", tt.referer, got, tt.want)
			}
		})
	}

	t.Run("正規ホストが空の場合は開発ホストのみ許可されること", func(t *testing.T) {
		t.Parallel()

		if refererAllowed("https://anything.example/", "") {
			t.Error("空の正規ホストで任意のRefererが許可された")
		}
	})
}

// TestRefererOf はRefererヘッダーの読み取りを検証する。
func TestRefererOf(t *testing.T) {
	t.Parallel()

	t.Run("Refererが優先されること", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Referer", "https://a.example/")
		r.Header.Set("Referrer", "https://b.example/")
		if got := refererOf(r); got != "https://a.example/" {
			t.Errorf("refererOf() = %q", got)
		}
	})

	t.Run("Refererが無い場合はReferrerを使うこと", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Referrer", "https://b.example/")
		if got := refererOf(r); got != "https://b.example/" {
			t.Errorf("refererOf() = %q", got)
		}
	})
}
