package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stsysd/gameshelf/db"
	"github.com/stsysd/gameshelf/model"
)

func setupTestRepository(t *testing.T) (*GameRepository, *Database, func()) {
	// テスト用の一時ディレクトリを作成
	tempDir, err := os.MkdirTemp("", "gameshelf-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	database, err := NewDatabase(tempDir, db.Migrate)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create test database: %v", err)
	}

	// クリーンアップ関数を返す
	cleanup := func() {
		database.Close()
		os.RemoveAll(tempDir)
	}

	return NewGameRepository(database), database, cleanup
}

func newTestGame(t *testing.T, id, title string) *model.Game {
	t.Helper()
	purchased := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	r := model.NewGame(model.GameProps{
		ID:           id,
		Title:        title,
		Description:  "Test description",
		Platform:     "Nintendo Switch",
		Format:       "Physical",
		PurchaseDate: &purchased,
		Status:       "Owned",
	})
	if r.IsErr() {
		t.Fatalf("Failed to create game: %v", r.UnwrapErr())
	}
	return r.Unwrap()
}

func TestSaveAndFindByID(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	game := newTestGame(t, "game-1", "The Legend of Zelda")
	if r := repo.Save(ctx, game); r.IsErr() {
		t.Fatalf("Failed to save game: %v", r.UnwrapErr())
	}

	found, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	if found.IsErr() {
		t.Fatalf("Failed to find game: %v", found.UnwrapErr())
	}

	got := found.Unwrap()
	if got.ID() != game.ID() {
		t.Errorf("Expected ID %s, got %s", game.ID(), got.ID())
	}
	if got.Title() != game.Title() {
		t.Errorf("Expected Title %s, got %s", game.Title(), got.Title())
	}
	if got.Status() != model.StatusOwned {
		t.Errorf("Expected Status Owned, got %s", got.Status())
	}
	if got.PurchaseDate() == nil || !got.PurchaseDate().Equal(*game.PurchaseDate()) {
		t.Errorf("Expected PurchaseDate %v, got %v", game.PurchaseDate(), got.PurchaseDate())
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()

	found, err := repo.FindByID(context.Background(), "missing-id")
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	if found.IsOk() {
		t.Fatal("Expected NotFound error, got game")
	}

	repoErr := found.UnwrapErr()
	if repoErr.Type() != TypeNotFound {
		t.Errorf("Expected type %s, got %s", TypeNotFound, repoErr.Type())
	}
	if !errors.Is(repoErr, ErrNotFound) {
		t.Error("Expected error to match ErrNotFound")
	}
	var nf *NotFoundError
	if !errors.As(repoErr, &nf) || nf.EntityID != "missing-id" {
		t.Errorf("Expected NotFoundError for missing-id, got %v", repoErr)
	}
	if repoErr.Error() != "Entity with id 'missing-id' not found" {
		t.Errorf("Unexpected message %q", repoErr.Error())
	}
}

func TestSaveTwiceUpserts(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	game := newTestGame(t, "game-1", "Original")
	if r := repo.Save(ctx, game); r.IsErr() {
		t.Fatalf("Failed to save game: %v", r.UnwrapErr())
	}
	if r := game.UpdateTitle("Updated"); r.IsErr() {
		t.Fatalf("Failed to update title: %v", r.UnwrapErr())
	}
	game.UpdatePurchaseDate(nil)
	if r := repo.Save(ctx, game); r.IsErr() {
		t.Fatalf("Failed to save game again: %v", r.UnwrapErr())
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	games := all.Unwrap()
	if len(games) != 1 {
		t.Fatalf("Expected 1 game, got %d", len(games))
	}
	if games[0].Title() != "Updated" {
		t.Errorf("Expected Title Updated, got %s", games[0].Title())
	}
	if games[0].PurchaseDate() != nil {
		t.Errorf("Expected nil PurchaseDate, got %v", games[0].PurchaseDate())
	}
}

func TestFindAll(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	empty, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	if empty.IsErr() {
		t.Fatalf("Failed to find games: %v", empty.UnwrapErr())
	}
	if games := empty.Unwrap(); games == nil || len(games) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", games)
	}

	// 挿入順で返されること
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if r := repo.Save(ctx, newTestGame(t, id, "Game "+id)); r.IsErr() {
			t.Fatalf("Failed to save game %s: %v", id, r.UnwrapErr())
		}
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	games := all.Unwrap()
	if len(games) != len(ids) {
		t.Fatalf("Expected %d games, got %d", len(ids), len(games))
	}
	for i, id := range ids {
		if games[i].ID() != id {
			t.Errorf("Expected game %d to be %s, got %s", i, id, games[i].ID())
		}
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	if r := repo.Save(ctx, newTestGame(t, "game-1", "Doomed")); r.IsErr() {
		t.Fatalf("Failed to save game: %v", r.UnwrapErr())
	}

	for i := 0; i < 2; i++ {
		if r := repo.Delete(ctx, "game-1"); r.IsErr() {
			t.Fatalf("Delete #%d failed: %v", i+1, r.UnwrapErr())
		}
	}

	found, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	if found.IsOk() || found.UnwrapErr().Type() != TypeNotFound {
		t.Error("Expected deleted game to be NotFound")
	}
}

func TestCorruptRecordEscalates(t *testing.T) {
	repo, database, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	conn, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("Failed to open connection: %v", err)
	}
	_, err = conn.Exec(`INSERT INTO games (id, title, description, platform, format, purchase_date, status)
		VALUES ('bad', 'Broken', '', 'PC', 'Digital', NULL, 'Borrowed')`)
	if err != nil {
		t.Fatalf("Failed to insert corrupt row: %v", err)
	}

	_, err = repo.FindByID(ctx, "bad")
	var corrupt *CorruptRecordError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Expected CorruptRecordError, got %v", err)
	}
	if corrupt.Field != "status" {
		t.Errorf("Expected corrupt field status, got %s", corrupt.Field)
	}

	_, err = repo.FindAll(ctx)
	if !errors.As(err, &corrupt) {
		t.Errorf("Expected CorruptRecordError from FindAll, got %v", err)
	}
}

func TestConnectionFailureIsRetried(t *testing.T) {
	tempDir := t.TempDir()
	attempts := 0
	flaky := func(conn *sql.DB) error {
		attempts++
		if attempts == 1 {
			return errors.New("migration failed")
		}
		return db.Migrate(conn)
	}

	database, err := NewDatabase(tempDir, flaky)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()
	repo := NewGameRepository(database)

	r := repo.Save(context.Background(), newTestGame(t, "game-1", "Retry"))
	if r.IsOk() {
		t.Fatal("Expected first save to fail")
	}
	if r.UnwrapErr().Type() != TypeUnknown {
		t.Errorf("Expected UnknownError, got %s", r.UnwrapErr().Type())
	}

	// 失敗した接続はキャッシュされず、次の呼び出しで再試行されること
	if r := repo.Save(context.Background(), newTestGame(t, "game-1", "Retry")); r.IsErr() {
		t.Fatalf("Expected second save to succeed: %v", r.UnwrapErr())
	}
	if attempts != 2 {
		t.Errorf("Expected 2 connection attempts, got %d", attempts)
	}
}

func TestReopenAfterClose(t *testing.T) {
	repo, database, cleanup := setupTestRepository(t)
	defer cleanup()
	ctx := context.Background()

	if r := repo.Save(ctx, newTestGame(t, "game-1", "Persisted")); r.IsErr() {
		t.Fatalf("Failed to save game: %v", r.UnwrapErr())
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Failed to close database: %v", err)
	}

	found, err := repo.FindByID(ctx, "game-1")
	if err != nil {
		t.Fatalf("Unexpected fatal error: %v", err)
	}
	if found.IsErr() {
		t.Fatalf("Expected game after reopen, got %v", found.UnwrapErr())
	}
	if database.StoreName() != "games" {
		t.Errorf("Expected store name games, got %s", database.StoreName())
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"disk full", sqlite3.Error{Code: sqlite3.ErrFull}, true},
		{"wrapped disk full", fmt.Errorf("failed to commit transaction: %w", sqlite3.Error{Code: sqlite3.ErrFull}), true},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isQuotaExceeded(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			classified := classify(tt.err, NewSaveError(tt.err))
			if tt.expected && classified.Type() != TypeQuotaExceeded {
				t.Errorf("Expected QuotaExceeded, got %s", classified.Type())
			}
			if !tt.expected && classified.Type() != TypeSave {
				t.Errorf("Expected SaveError, got %s", classified.Type())
			}
		})
	}
}
