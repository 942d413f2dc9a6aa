package identity

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// defaultCertTTL はCache-Controlが無い場合の証明書キャッシュ期間。
const defaultCertTTL = time.Hour

// JSONFetcher はURLからJSONを取得する。pkg/httpclient.Client が満たす。
type JSONFetcher interface {
	GetJSON(ctx context.Context, url string, result any) (http.Header, error)
}

// CertSet は公開されたX.509証明書セット（kid → PEM）をキャッシュして引く鍵ソース。
type CertSet struct {
	url     string
	fetcher JSONFetcher
	now     func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time

	// group は同時に起きた再取得を1回にまとめる。
	group singleflight.Group
}

// NewCertSet は新しいCertSetを生成する。証明書は初回参照時に取得する。
func NewCertSet(url string, fetcher JSONFetcher) *CertSet {
	return &CertSet{
		url:     url,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// PublicKey はkidに対応する公開鍵を返す。
// キャッシュが有効期限内なら取得し直さず、無いkidはそのまま ErrUnknownKey とする。
// 期限切れの場合のみ証明書セットを再取得する。
func (c *CertSet) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	fresh := c.now().Before(c.expires)
	c.mu.RUnlock()
	if fresh {
		if ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: kid=%s", ErrUnknownKey, kid)
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid=%s", ErrUnknownKey, kid)
}

// refresh は証明書セットを取得し直す。
func (c *CertSet) refresh(ctx context.Context) error {
	var raw map[string]string
	header, err := c.fetcher.GetJSON(ctx, c.url, &raw)
	if err != nil {
		return fmt.Errorf("署名証明書の取得に失敗: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pem := range raw {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			log.Printf("[Identity] 証明書のパースに失敗: kid=%s, error=%v", kid, err)
			continue
		}
		keys[kid] = key
	}

	c.mu.Lock()
	c.keys = keys
	c.expires = c.now().Add(maxAge(header))
	c.mu.Unlock()
	return nil
}

// maxAge はCache-Controlヘッダーのmax-ageを返す。無ければ既定値。
func maxAge(h http.Header) time.Duration {
	for _, directive := range strings.Split(h.Get("Cache-Control"), ",") {
		v, found := strings.CutPrefix(strings.TrimSpace(directive), "max-age=")
		if !found {
			continue
		}
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertTTL
}
