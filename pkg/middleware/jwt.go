package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bookgate/internal/identity"
)

// コンテキストキー。
const (
	contextKeyUserID = "user_id"
	contextKeyEmail  = "email"
	contextKeyAdmin  = "admin"
)

// TokenVerifier はベアラートークンを検証する。identity.Verifier が満たす。
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Claims, error)
}

// JWTAuth はAuthorizationヘッダーのベアラートークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id"、"email"、"admin" を設定する。
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set(contextKeyUserID, claims.Subject)
		c.Set(contextKeyEmail, claims.Email)
		c.Set(contextKeyAdmin, claims.Admin)
		c.Next()
	}
}

// RequireAdmin は管理者クレームを持たないリクエストを403で拒否するGinミドルウェアを返す。
// JWTAuthの後に適用する。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "管理者権限が必要です",
			})
			return
		}
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// GetEmail はGinコンテキストからメールアドレスを取得する。
func GetEmail(c *gin.Context) string {
	return c.GetString(contextKeyEmail)
}

// IsAdmin は認証済みユーザーが管理者かどうかを返す。
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(contextKeyAdmin)
}
