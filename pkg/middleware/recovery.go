package middleware

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニックの値をログに出力し、"Internal Server Error: <値>" を平文の500で返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s request_id=%s: %v", c.Request.Method, c.Request.URL.Path, GetRequestID(c), r)
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.AbortWithStatus(http.StatusInternalServerError)
				_, _ = fmt.Fprintf(c.Writer, "Internal Server Error: %v", r)
			}
		}()
		c.Next()
	}
}
