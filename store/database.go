package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// MigrationFunc はデータベース接続に対してマイグレーションを実行する関数の型です。
type MigrationFunc func(conn *sql.DB) error

const (
	databaseFile = "gameshelf.db"
	storeName    = "games"
)

// Database はSQLiteへの接続を遅延して開き、キャッシュします。
// 接続に失敗した場合はキャッシュを破棄するため、次の呼び出しで再試行されます。
type Database struct {
	path    string
	migrate MigrationFunc

	mu   sync.Mutex
	conn *sql.DB
}

// NewDatabase は新しいDatabaseを作成します。この時点では接続しません。
func NewDatabase(dataDir string, migrate MigrationFunc) (*Database, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Database{
		path:    filepath.Join(dataDir, databaseFile),
		migrate: migrate,
	}, nil
}

// Conn はキャッシュ済みの接続を返します。未接続の場合は接続してマイグレーションを実行します。
func (d *Database) Conn(ctx context.Context) (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return d.conn, nil
	}

	conn, err := sql.Open("sqlite3", d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if d.migrate != nil {
		if err := d.migrate(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	d.conn = conn
	return conn, nil
}

// Close は接続を閉じます。次の Conn 呼び出しで再接続されます。
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// StoreName はゲームを格納するテーブル名を返します。
func (d *Database) StoreName() string {
	return storeName
}

// Path はデータベースファイルのパスを返します。
func (d *Database) Path() string {
	return d.path
}
