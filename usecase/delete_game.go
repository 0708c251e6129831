package usecase

import (
	"context"

	"github.com/stsysd/gameshelf/result"
)

// DeleteGame はゲームをコレクションから削除するユースケースです。
type DeleteGame struct {
	repo GameRepository
}

// NewDeleteGame は新しいDeleteGameを作成します。
func NewDeleteGame(repo GameRepository) *DeleteGame {
	return &DeleteGame{repo: repo}
}

// Execute は指定IDのゲームを削除します。存在しないIDでも成功します。
func (uc *DeleteGame) Execute(ctx context.Context, id string) result.Result[result.Void, ApplicationError] {
	deleted := uc.repo.Delete(ctx, id)
	if deleted.IsErr() {
		return result.Err[result.Void, ApplicationError](newRepositoryError("Failed to delete game", deleted.UnwrapErr()))
	}
	return result.OkVoid[ApplicationError]()
}
