package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound は指定IDのレコードが存在しない場合に返される。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrInvalidBook はレコードの内容が不正な場合に返される。
	ErrInvalidBook = errors.New("書籍レコードが不正です")
)

// Book は書籍のコンテンツレコード。
type Book struct {
	// ID は公開用の書籍ID。
	ID string `json:"id"`
	// Title は書籍のタイトル。
	Title string `json:"title"`
	// Author は著者名。
	Author string `json:"author"`
	// IndexURL は書籍HTMLの入口となる絶対URL。空の場合もある。
	IndexURL string `json:"index_url"`
	// IsPremium はサブスクリプション限定の書籍かどうか。
	IsPremium bool `json:"is_premium"`
	// CreatedAt は作成日時。
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate は書き込み前にレコードを検証する。
// IndexURLは空でなければ、ホストを持つ絶対URLでなければならない。
func (b *Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: IDが空です", ErrInvalidBook)
	}
	if b.IndexURL == "" {
		return nil
	}
	u, err := url.Parse(b.IndexURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: indexURLは絶対URLである必要があります: %q", ErrInvalidBook, b.IndexURL)
	}
	return nil
}

// Store はレコードストアの操作。
type Store interface {
	// GetBook はIDで書籍を1件取得する。存在しなければ ErrNotFound。
	GetBook(ctx context.Context, id string) (*Book, error)
	// PutBook は書籍を作成または更新する。
	PutBook(ctx context.Context, b *Book) error
	// DeleteBook は書籍を削除する。存在しなければ ErrNotFound。
	DeleteBook(ctx context.Context, id string) error
	// ListBooks は書籍をID順に取得する。
	ListBooks(ctx context.Context, limit, offset int) ([]Book, error)
	// Close は接続を閉じる。
	Close() error
}

// Open はドライバ名に応じたStoreを開く。
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("未対応のドライバ: %q", driver)
	}
}
