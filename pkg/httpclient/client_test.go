package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// testCert はGetJSONのテスト用ペイロード。
type testCert map[string]string

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("既定のタイムアウトが30秒に設定されていること", func(t *testing.T) {
		t.Parallel()

		client := New()
		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
		if client.maxBodySize != DefaultMaxBodySize {
			t.Errorf("maxBodySize = %d, want %d", client.maxBodySize, DefaultMaxBodySize)
		}
	})

	t.Run("オプションでタイムアウトと上限サイズを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New(WithTimeout(0), WithMaxBodySize(10))
		if client.httpClient.Timeout != 0 {
			t.Errorf("Timeout = %v, want 0", client.httpClient.Timeout)
		}
		if client.maxBodySize != 10 {
			t.Errorf("maxBodySize = %d, want 10", client.maxBodySize)
		}
	})
}

// TestFetchDocument はFetchDocument関数を検証する。
func TestFetchDocument(t *testing.T) {
	t.Parallel()

	t.Run("2xxの場合に本文とContent-Typeを取得できること", func(t *testing.T) {
		t.Parallel()

		var gotMethod, gotAccept string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotAccept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head></head><body>本文</body></html>"))
		}))
		defer ts.Close()

		doc, err := New().FetchDocument(context.Background(), ts.URL+"/index.html")
		if err != nil {
			t.Fatalf("FetchDocument()でエラーが発生: %v", err)
		}
		if gotMethod != http.MethodGet {
			t.Errorf("Method = %q, want %q", gotMethod, http.MethodGet)
		}
		if !strings.Contains(gotAccept, "text/html") {
			t.Errorf("Accept = %q, want text/html を含む", gotAccept)
		}
		if !doc.OK() {
			t.Errorf("OK() = false, StatusCode = %d", doc.StatusCode)
		}
		if string(doc.Body) != "<html><head></head><body>本文</body></html>" {
			t.Errorf("Body = %q", string(doc.Body))
		}
		if doc.ContentType != "text/html; charset=utf-8" {
			t.Errorf("ContentType = %q", doc.ContentType)
		}
	})

	t.Run("非2xxの場合はエラーにせずステータスのみ返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("not found"))
		}))
		defer ts.Close()

		doc, err := New().FetchDocument(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("FetchDocument()でエラーが発生: %v", err)
		}
		if doc.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", doc.StatusCode, http.StatusNotFound)
		}
		if doc.OK() {
			t.Error("OK() = true, want false")
		}
		if len(doc.Body) != 0 {
			t.Errorf("Body = %q, want empty", string(doc.Body))
		}
	})

	t.Run("Shift_JISの本文がUTF-8に変換されること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
			// "本" のShift_JISエンコーディング
			_, _ = w.Write([]byte{0x96, 0x7b})
		}))
		defer ts.Close()

		doc, err := New().FetchDocument(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("FetchDocument()でエラーが発生: %v", err)
		}
		if string(doc.Body) != "本" {
			t.Errorf("Body = %q, want %q", string(doc.Body), "本")
		}
	})

	t.Run("charset宣言が無い場合は本文がそのまま返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>café</p>"))
		}))
		defer ts.Close()

		doc, err := New().FetchDocument(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("FetchDocument()でエラーが発生: %v", err)
		}
		if string(doc.Body) != "<p>café</p>" {
			t.Errorf("Body = %q", string(doc.Body))
		}
	})

	t.Run("上限サイズを超えた場合はErrBodyTooLargeを返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 100)))
		}))
		defer ts.Close()

		_, err := New(WithMaxBodySize(10)).FetchDocument(context.Background(), ts.URL)
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("FetchDocument() = %v, want %v", err, ErrBodyTooLarge)
		}
	})

	t.Run("接続できない場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		url := ts.URL
		ts.Close()

		if _, err := New().FetchDocument(context.Background(), url); err == nil {
			t.Error("閉じたサーバーへのリクエストでエラーが返るべき")
		}
	})

	t.Run("不正なURLの場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		if _, err := New().FetchDocument(context.Background(), "://bad"); err == nil {
			t.Error("不正なURLでエラーが返るべき")
		}
	})
}

// TestGetJSON はGetJSON関数を検証する。
func TestGetJSON(t *testing.T) {
	t.Parallel()

	t.Run("JSONをデシリアライズしヘッダーを返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "public, max-age=300")
			_, _ = w.Write([]byte(`{"kid-1":"cert-1"}`))
		}))
		defer ts.Close()

		var result testCert
		header, err := New().GetJSON(context.Background(), ts.URL, &result)
		if err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if result["kid-1"] != "cert-1" {
			t.Errorf("result = %v", result)
		}
		if header.Get("Cache-Control") != "public, max-age=300" {
			t.Errorf("Cache-Control = %q", header.Get("Cache-Control"))
		}
	})

	t.Run("非2xxの場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		var result testCert
		if _, err := New().GetJSON(context.Background(), ts.URL, &result); err == nil {
			t.Error("503でエラーが返るべき")
		}
	})

	t.Run("不正なJSONの場合はエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer ts.Close()

		var result testCert
		if _, err := New().GetJSON(context.Background(), ts.URL, &result); err == nil {
			t.Error("不正なJSONでエラーが返るべき")
		}
	})
}
