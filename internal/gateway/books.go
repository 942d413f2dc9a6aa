package gateway

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/nao1215/bookgate/pkg/middleware"
)

const (
	// defaultListLimit は一覧取得の既定件数。
	defaultListLimit = 50
	// maxListLimit は一覧取得の最大件数。
	maxListLimit = 200
)

// putBookRequest は書籍登録・更新リクエストのJSON構造。
type putBookRequest struct {
	// Title は書籍のタイトル。
	Title string `json:"title"`
	// Author は著者名。
	Author string `json:"author"`
	// IndexURL は書籍HTMLの入口となる絶対URL。
	IndexURL string `json:"index_url" binding:"required"`
	// IsPremium はサブスクリプション限定かどうか。
	IsPremium bool `json:"is_premium"`
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    middleware.GetUserID(c),
			"email": middleware.GetEmail(c),
			"admin": middleware.IsAdmin(c),
		})
	}
}

// handleListBooks は書籍一覧を返すハンドラを返す。
func (s *Server) handleListBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryInt(c, "limit", defaultListLimit)
		if err != nil || limit <= 0 || limit > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1から200の整数で指定してください"})
			return
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offsetは0以上の整数で指定してください"})
			return
		}

		books, err := s.books.ListBooks(c.Request.Context(), limit, offset)
		if err != nil {
			log.Printf("[Gateway] 書籍一覧の取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "書籍一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books, "limit": limit, "offset": offset})
	}
}

// handleGetBook は書籍レコードを1件返すハンドラを返す。
func (s *Server) handleGetBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		book, err := s.books.GetBook(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "書籍が見つかりません"})
			return
		}
		if err != nil {
			log.Printf("[Gateway] 書籍の取得に失敗: id=%s, error=%v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "書籍の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, book)
	}
}

// handlePutBook は書籍レコードを作成または更新するハンドラを返す。
func (s *Server) handlePutBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req putBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		id := c.Param("id")
		book := &store.Book{
			ID:        id,
			Title:     req.Title,
			Author:    req.Author,
			IndexURL:  req.IndexURL,
			IsPremium: req.IsPremium,
		}
		if err := s.books.PutBook(c.Request.Context(), book); err != nil {
			if errors.Is(err, store.ErrInvalidBook) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Printf("[Gateway] 書籍の保存に失敗: id=%s, error=%v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "書籍の保存に失敗しました"})
			return
		}
		log.Printf("[Gateway] 書籍を保存: id=%s, by=%s", id, middleware.GetUserID(c))

		saved, err := s.books.GetBook(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存した書籍の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// handleDeleteBook は書籍レコードを削除するハンドラを返す。
func (s *Server) handleDeleteBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := s.books.DeleteBook(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "書籍が見つかりません"})
			return
		}
		if err != nil {
			log.Printf("[Gateway] 書籍の削除に失敗: id=%s, error=%v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "書籍の削除に失敗しました"})
			return
		}
		log.Printf("[Gateway] 書籍を削除: id=%s, by=%s", id, middleware.GetUserID(c))
		c.Status(http.StatusNoContent)
	}
}

// queryInt はクエリパラメータを整数として読む。未指定なら既定値。
func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
