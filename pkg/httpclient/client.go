package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DefaultMaxBodySize は取得するレスポンスボディの既定上限（32MiB）。
const DefaultMaxBodySize int64 = 32 << 20

// ErrBodyTooLarge はレスポンスボディが上限を超えた場合に返される。
var ErrBodyTooLarge = errors.New("レスポンスボディが上限サイズを超えています")

// Client は外部エンドポイント用のHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// maxBodySize は読み込むボディの上限バイト数。
	maxBodySize int64
	// userAgent は送信するUser-Agentヘッダー。
	userAgent string
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithTimeout はリクエスト全体のタイムアウトを設定する。0は無制限。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxBodySize はボディの上限バイト数を設定する。
func WithMaxBodySize(n int64) Option {
	return func(c *Client) { c.maxBodySize = n }
}

// WithHTTPClient は内部のhttp.Clientを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New は新しいHTTPクライアントを生成する。既定のタイムアウトは30秒。
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxBodySize: DefaultMaxBodySize,
		userAgent:   "bookgate/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document はコンテンツオリジンから取得した文書。
type Document struct {
	// StatusCode は上流のHTTPステータスコード。
	StatusCode int
	// ContentType は上流のContent-Typeヘッダー。
	ContentType string
	// Body はUTF-8に変換済みの本文。非2xxの場合は空。
	Body []byte
}

// OK は上流が2xxを返したかを報告する。
func (d *Document) OK() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}

// FetchDocument は指定URLにGETリクエストを送り、文書を取得する。
// 非2xxの場合はエラーにせず、ステータスコードのみを持つDocumentを返す。
// 送信失敗や読み込み失敗はエラーとして返す。
func (c *Client) FetchDocument(ctx context.Context, url string) (*Document, error) {
	resp, err := c.get(ctx, url, "text/html,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := &Document{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if !doc.OK() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return doc, nil
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	body, err = toUTF8(body, doc.ContentType)
	if err != nil {
		return nil, err
	}
	doc.Body = body
	return doc, nil
}

// GetJSON は指定URLにGETリクエストを送信し、レスポンスボディをresultにデシリアライズする。
// レスポンスヘッダーも返す（キャッシュ期間の判定に使う）。
func (c *Client) GetJSON(ctx context.Context, url string, result any) (http.Header, error) {
	resp, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("HTTPエラー: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return resp.Header, nil
}

func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	return resp, nil
}

// readBody は上限サイズまでボディを読み込む。上限を超えた場合はエラー。
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	limit := c.maxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// toUTF8 はContent-Typeでcharsetが明示されていて、それがUTF-8以外の場合のみ変換する。
// 宣言が無い・不明な場合は本文をそのまま返す。
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil //nolint:nilerr // 不正なContent-Typeは無変換で扱う
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return body, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return body, nil
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, fmt.Errorf("文字コード %s からの変換に失敗: %w", name, err)
	}
	return out, nil
}
