package middleware

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// sensitiveParams はアクセスログで伏せるクエリパラメータ。
var sensitiveParams = []string{"token", "id_token", "access_token"}

// Logger はクエリ中の認証情報を伏せたアクセスログを出力するGinミドルウェアを返す。
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		return fmt.Sprintf("[GIN] %s | %3d | %13v | %15s | %-7s %s | request_id=%s\n",
			p.TimeStamp.Format(time.RFC3339),
			p.StatusCode,
			p.Latency,
			p.ClientIP,
			p.Method,
			MaskQuery(p.Path),
			p.Keys[contextKeyRequestID],
		)
	})
}

// MaskQuery はパス中のクエリ文字列から認証情報の値を "***" に置き換える。
func MaskQuery(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.RawQuery == "" {
		return path
	}
	q := u.Query()
	masked := false
	for _, key := range sensitiveParams {
		if q.Has(key) {
			q.Set(key, "***")
			masked = true
		}
	}
	if !masked {
		return path
	}
	u.RawQuery = q.Encode()
	return u.String()
}
