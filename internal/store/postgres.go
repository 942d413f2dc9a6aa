package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema_postgres.sql
var postgresSchema string

// Postgres はPostgreSQLを使ったStore実装。
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres はコネクションプールを作成し、スキーマを適用する。
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// GetBook はIDで書籍を1件取得する。
func (p *Postgres) GetBook(ctx context.Context, id string) (*Book, error) {
	var b Book
	err := p.pool.QueryRow(ctx, `
		SELECT id, title, author, index_url, is_premium, created_at, updated_at
		FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.IndexURL, &b.IsPremium, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("書籍の取得に失敗: %w", err)
	}
	return &b, nil
}

// PutBook は書籍を作成または更新する。
func (p *Postgres) PutBook(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO books (id, title, author, index_url, is_premium)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			index_url = EXCLUDED.index_url,
			is_premium = EXCLUDED.is_premium,
			updated_at = now()`,
		b.ID, b.Title, b.Author, b.IndexURL, b.IsPremium)
	if err != nil {
		return fmt.Errorf("書籍の保存に失敗: %w", err)
	}
	return nil
}

// DeleteBook は書籍を削除する。
func (p *Postgres) DeleteBook(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("書籍の削除に失敗: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBooks は書籍をID順に取得する。
func (p *Postgres) ListBooks(ctx context.Context, limit, offset int) ([]Book, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, author, index_url, is_premium, created_at, updated_at
		FROM books ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗: %w", err)
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Book, error) {
		var b Book
		err := row.Scan(&b.ID, &b.Title, &b.Author, &b.IndexURL, &b.IsPremium, &b.CreatedAt, &b.UpdatedAt)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("書籍行の読み取りに失敗: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Close はコネクションプールを閉じる。
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
