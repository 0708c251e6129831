// Package db はデータベースのスキーマ管理を提供します。
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var embedMigrations embed.FS

// SchemaVersion は埋め込まれたマイグレーションの最新バージョンです。
const SchemaVersion = 1

// goose はパッケージ単位のグローバル設定を持つため、並行実行を避ける
var gooseMu sync.Mutex

// Migrate はデータベースに対してマイグレーションを実行します。
// 適用済みのバージョンはスキップされるため、テーブルとインデックスは一度だけ作成されます。
func Migrate(conn *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	// goose の設定
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	// SQLite 用に goose を設定
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	// マイグレーションを実行
	if err := goose.UpTo(conn, "schema", SchemaVersion); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
