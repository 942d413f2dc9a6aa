package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bookgate/internal/config"
	"github.com/nao1215/bookgate/internal/store"
	"github.com/nao1215/bookgate/pkg/httpclient"
	"github.com/nao1215/bookgate/pkg/middleware"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// BookStore はゲートウェイと管理APIが使うレコードストアの操作。
type BookStore interface {
	GetBook(ctx context.Context, id string) (*store.Book, error)
	PutBook(ctx context.Context, b *store.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, limit, offset int) ([]store.Book, error)
}

// DocumentFetcher はコンテンツオリジンから文書を取得する。
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*httpclient.Document, error)
}

// Deps はサーバーに注入する外部コラボレータ。
// いずれもプロセス起動時に一度だけ生成し、全リクエストで共有する。
type Deps struct {
	// Verifier はベアラートークンを検証するIdentity Verifier。
	Verifier middleware.TokenVerifier
	// Books はコンテンツレコードのストア。
	Books BookStore
	// Fetcher はコンテンツオリジンのクライアント。
	Fetcher DocumentFetcher
}

// Server はゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// canonicalOrigin はリダイレクト先となる正規オリジン。
	canonicalOrigin string
	// canonicalHost はReferer照合に使う正規オリジンのホスト。
	canonicalHost string
	// frontendOrigins は管理APIのCORS許可オリジン。
	frontendOrigins []string
	verifier        middleware.TokenVerifier
	books           BookStore
	fetcher         DocumentFetcher
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Verifier == nil || deps.Books == nil || deps.Fetcher == nil {
		return nil, errors.New("Verifier・Books・Fetcherはすべて必須です")
	}
	u, err := url.Parse(cfg.CanonicalOrigin)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("正規オリジンが不正です: %q", cfg.CanonicalOrigin)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	s := &Server{
		router:          router,
		port:            cfg.Port,
		canonicalOrigin: cfg.CanonicalOrigin,
		canonicalHost:   u.Host,
		frontendOrigins: cfg.FrontendOrigins,
		verifier:        deps.Verifier,
		books:           deps.Books,
		fetcher:         deps.Fetcher,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はサーバーのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 書籍コンテンツゲートウェイ（トークンはクエリで受け取る）
	s.router.GET("/proxy-book", s.handleProxyBook())
	// 旧パスとの互換
	s.router.GET("/.netlify/functions/proxy-book", s.handleProxyBook())

	// 管理API
	api := s.router.Group("/api/v1")
	api.Use(middleware.CORS(s.frontendOrigins))
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.Use(middleware.JWTAuth(s.verifier))
	{
		api.GET("/me", s.handleGetCurrentUser())

		books := api.Group("/books")
		books.Use(middleware.RequireAdmin())
		{
			books.GET("", s.handleListBooks())
			books.GET("/:id", s.handleGetBook())
			books.PUT("/:id", s.handlePutBook())
			books.DELETE("/:id", s.handleDeleteBook())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "bookgate"})
	})
}
