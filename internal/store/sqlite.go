package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/bookgate/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.up.sql
var sqliteMigrations embed.FS

// SQLite はSQLiteを使ったStore実装。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite はSQLiteデータベースを開き、マイグレーションを適用する。
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため1接続に固定する
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := migration.Run(ctx, db, sqliteMigrations, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return &SQLite{db: db}, nil
}

// MigrationStatuses は組み込みマイグレーションの適用状況を返す。
func (s *SQLite) MigrationStatuses(ctx context.Context) ([]migration.Status, error) {
	return migration.Statuses(ctx, s.db, sqliteMigrations, "migrations")
}

// GetBook はIDで書籍を1件取得する。
func (s *SQLite) GetBook(ctx context.Context, id string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, index_url, is_premium, created_at, updated_at
		FROM books WHERE id = ?`, id)

	var b Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.IndexURL, &b.IsPremium, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("書籍の取得に失敗: %w", err)
	}
	return &b, nil
}

// PutBook は書籍を作成または更新する。作成日時は初回のみ設定される。
func (s *SQLite) PutBook(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, index_url, is_premium, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			index_url = excluded.index_url,
			is_premium = excluded.is_premium,
			updated_at = excluded.updated_at`,
		b.ID, b.Title, b.Author, b.IndexURL, b.IsPremium, now, now)
	if err != nil {
		return fmt.Errorf("書籍の保存に失敗: %w", err)
	}
	return nil
}

// DeleteBook は書籍を削除する。
func (s *SQLite) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("書籍の削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBooks は書籍をID順に取得する。
func (s *SQLite) ListBooks(ctx context.Context, limit, offset int) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, index_url, is_premium, created_at, updated_at
		FROM books ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.IndexURL, &b.IsPremium, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("書籍行の読み取りに失敗: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Close はデータベース接続を閉じる。
func (s *SQLite) Close() error {
	return s.db.Close()
}
