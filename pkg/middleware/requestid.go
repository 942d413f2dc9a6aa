package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDを運ぶHTTPヘッダー。
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "request_id"

// RequestID はリクエストごとにIDを割り当てるGinミドルウェアを返す。
// 受信ヘッダーにIDがあればそれを引き継ぎ、無ければUUIDを生成する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
