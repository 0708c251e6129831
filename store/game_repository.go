package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gameshelf/store")

const (
	upsertGameQuery = `
		INSERT INTO games (id, title, description, platform, format, purchase_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			platform = excluded.platform,
			format = excluded.format,
			purchase_date = excluded.purchase_date,
			status = excluded.status`
	selectGameQuery = `
		SELECT id, title, description, platform, format, purchase_date, status
		FROM games WHERE id = ?`
	selectGamesQuery = `
		SELECT id, title, description, platform, format, purchase_date, status
		FROM games ORDER BY rowid`
	deleteGameQuery = `DELETE FROM games WHERE id = ?`
)

// GameRepository はSQLiteを使用したゲームリポジトリの実装です。
// 各操作は1つのトランザクション内で実行されます。
type GameRepository struct {
	db *Database
}

// NewGameRepository は新しいGameRepositoryを作成します。
func NewGameRepository(db *Database) *GameRepository {
	return &GameRepository{db: db}
}

// Save はゲームを保存します。同じIDのゲームが存在する場合は上書きします。
func (r *GameRepository) Save(ctx context.Context, game *model.Game) result.Result[result.Void, RepositoryError] {
	ctx, span := tracer.Start(ctx, "GameRepository.Save", trace.WithAttributes(attribute.String("game.id", game.ID())))
	defer span.End()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return result.Err[result.Void](failSpan(span, classify(err, NewUnknownError(err))))
	}

	rec := ToRecord(game)
	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertGameQuery,
			rec.ID, rec.Title, rec.Description, rec.Platform, rec.Format, rec.PurchaseDate, rec.Status)
		return err
	})
	if err != nil {
		return result.Err[result.Void](failSpan(span, classify(err, NewSaveError(err))))
	}

	return result.OkVoid[RepositoryError]()
}

// FindByID は指定されたIDのゲームを取得します。
// 保存済みの行が検証に失敗した場合は、Resultではなくエラーとして返します。
func (r *GameRepository) FindByID(ctx context.Context, id string) (result.Result[*model.Game, RepositoryError], error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return result.Err[*model.Game](failSpan(span, classify(err, NewUnknownError(err)))), nil
	}

	var rec GameRecord
	found := false
	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectGameQuery, id)
		if err := scanRecord(row, &rec); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return result.Err[*model.Game](failSpan(span, classify(err, NewFindByIDError(err)))), nil
	}

	if !found {
		return result.Err[*model.Game, RepositoryError](NewNotFoundError(id)), nil
	}

	game, err := FromRecord(rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "corrupt record")
		return result.Result[*model.Game, RepositoryError]{}, err
	}

	return result.Ok[*model.Game, RepositoryError](game), nil
}

// FindAll はすべてのゲームを挿入順で取得します。
func (r *GameRepository) FindAll(ctx context.Context) (result.Result[[]*model.Game, RepositoryError], error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindAll")
	defer span.End()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return result.Err[[]*model.Game](failSpan(span, classify(err, NewUnknownError(err)))), nil
	}

	records := []GameRecord{}
	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, selectGamesQuery)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec GameRecord
			if err := scanRecord(rows, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return result.Err[[]*model.Game](failSpan(span, classify(err, NewFindAllError(err)))), nil
	}

	games := make([]*model.Game, 0, len(records))
	for _, rec := range records {
		game, err := FromRecord(rec)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "corrupt record")
			return result.Result[[]*model.Game, RepositoryError]{}, err
		}
		games = append(games, game)
	}
	span.SetAttributes(attribute.Int("games.count", len(games)))

	return result.Ok[[]*model.Game, RepositoryError](games), nil
}

// Delete は指定されたIDのゲームを削除します。存在しない場合も成功とします。
func (r *GameRepository) Delete(ctx context.Context, id string) result.Result[result.Void, RepositoryError] {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return result.Err[result.Void](failSpan(span, classify(err, NewUnknownError(err))))
	}

	err = withTx(ctx, conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, deleteGameQuery, id)
		return err
	})
	if err != nil {
		return result.Err[result.Void](failSpan(span, classify(err, NewDeleteError(err))))
	}

	return result.OkVoid[RepositoryError]()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, rec *GameRecord) error {
	var purchaseDate sql.NullString
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Platform, &rec.Format, &purchaseDate, &rec.Status); err != nil {
		return err
	}
	rec.PurchaseDate = nil
	if purchaseDate.Valid {
		s := purchaseDate.String
		rec.PurchaseDate = &s
	}
	return nil
}

// withTx はfnをトランザクション内で実行し、成功時にコミットします。
func withTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// classify はストレージ容量不足をQuotaExceededに変換し、それ以外はfallbackを返します。
func classify(err error, fallback RepositoryError) RepositoryError {
	if isQuotaExceeded(err) {
		return NewQuotaExceededError()
	}
	return fallback
}

func isQuotaExceeded(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrFull
	}
	return false
}

func failSpan(span trace.Span, err RepositoryError) RepositoryError {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(err.Type()))
	return err
}
