package gateway

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/nao1215/bookgate/pkg/middleware"
)

// 失敗時の応答本文。リーダー画面の既存実装と互換。
const (
	msgUnauthorizedSource = "Unauthorized Source"
	msgMissingParams      = "Missing Params"
	msgInvalidSession     = "Invalid Session"
	msgBookNotFound       = "Book not found in database"
	msgBookURLMissing     = "Book URL missing in DB"
	msgUpstreamError      = "Upstream Error"
	msgInternalError      = "Internal Server Error: "
)

// handleProxyBook は書籍コンテンツを認可・取得・書き換えして返すハンドラを返す。
// Referer確認、パラメータ確認、トークン検証、レコード解決、上流取得、書き換えの順に処理し、
// 最初に失敗した段階で応答する。
func (s *Server) handleProxyBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqID := middleware.GetRequestID(c)

		referer := refererOf(c.Request)
		if !refererAllowed(referer, s.canonicalHost) {
			log.Printf("[Gateway] 許可されていない参照元を拒否: request_id=%s, referer=%q", reqID, referer)
			c.String(http.StatusForbidden, msgUnauthorizedSource)
			return
		}

		id := c.Query("id")
		token := c.Query("token")
		if id == "" || token == "" {
			c.String(http.StatusBadRequest, msgMissingParams)
			return
		}

		// 主体は確認するが、書籍ごとの閲覧権限はここでは判定しない
		claims, err := s.verifier.Verify(ctx, token)
		if err != nil {
			log.Printf("[Gateway] トークン検証に失敗: request_id=%s, error=%v", reqID, err)
			c.String(http.StatusUnauthorized, msgInvalidSession)
			return
		}

		book, err := s.books.GetBook(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, msgBookNotFound)
			return
		}
		if err != nil {
			s.internalError(c, err)
			return
		}
		if book.IndexURL == "" {
			c.String(http.StatusInternalServerError, msgBookURLMissing)
			return
		}

		doc, err := s.fetcher.FetchDocument(ctx, book.IndexURL)
		if err != nil {
			s.internalError(c, err)
			return
		}
		if !doc.OK() {
			log.Printf("[Gateway] 上流がエラーを返却: request_id=%s, book_id=%s, status=%d", reqID, id, doc.StatusCode)
			c.String(doc.StatusCode, msgUpstreamError)
			return
		}

		body := Rewrite(string(doc.Body), BaseURL(book.IndexURL), s.canonicalOrigin)

		log.Printf("[Gateway] 書籍を配信: request_id=%s, book_id=%s, subject=%s, bytes=%d", reqID, id, claims.Subject, len(body))
		c.Header("Access-Control-Allow-Origin", "*")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

// internalError は想定外のエラーをログに残し、メッセージ付きの500を返す。
func (s *Server) internalError(c *gin.Context, err error) {
	log.Printf("[Gateway] 想定外のエラー: request_id=%s, error=%v", middleware.GetRequestID(c), err)
	c.String(http.StatusInternalServerError, msgInternalError+err.Error())
}
