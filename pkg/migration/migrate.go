// Package migration はSQLiteデータベースのマイグレーションを管理する。
// embed.FSからSQLファイルを読み込み、バージョン管理テーブルで適用状態を追跡する。
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Migration は1つのマイグレーションファイル。
// ファイル名形式: 000001_description.up.sql
type Migration struct {
	// Version はファイル名先頭の連番。
	Version int
	// Name はファイル名の説明部分。
	Name string
	path string
}

// Status はマイグレーションの適用状態。
type Status struct {
	Migration
	// Applied は適用済みかどうか。
	Applied bool
	// AppliedAt は適用日時。未適用ならゼロ値。
	AppliedAt time.Time
}

// Run は未適用のマイグレーションをバージョン順に適用する。
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	statuses, err := Statuses(ctx, db, fsys, dir)
	if err != nil {
		return err
	}

	for _, st := range statuses {
		if st.Applied {
			continue
		}
		if err := apply(ctx, db, fsys, st.Migration); err != nil {
			return fmt.Errorf("マイグレーション %06d の適用に失敗: %w", st.Version, err)
		}
		log.Printf("[Migration] マイグレーション %06d_%s を適用しました", st.Version, st.Name)
	}
	return nil
}

// Statuses はディレクトリ内の全マイグレーションとその適用状態を返す。
func Statuses(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) ([]Status, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return nil, fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	migrations, err := Collect(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	statuses := make([]Status, 0, len(migrations))
	for _, m := range migrations {
		at, ok := applied[m.Version]
		statuses = append(statuses, Status{Migration: m, Applied: ok, AppliedAt: at})
	}
	return statuses, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]time.Time, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			v  int
			at time.Time
		)
		if err := rows.Scan(&v, &at); err != nil {
			return nil, err
		}
		applied[v] = at
	}
	return applied, rows.Err()
}

// Collect はディレクトリからup.sqlファイルを集め、バージョン順に並べる。
// 形式に合わないファイルは無視する。
func Collect(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		prefix, rest, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".up.sql"),
			path:    path.Join(dir, entry.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// apply は1つのマイグレーションをトランザクション内で適用する。
func apply(ctx context.Context, db *sql.DB, fsys fs.FS, m Migration) error {
	content, err := fs.ReadFile(fsys, m.path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}
	return tx.Commit()
}
