package usecase

import (
	"context"

	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
)

// GetGame は1件のゲームを取得するユースケースです。
type GetGame struct {
	repo GameRepository
}

// NewGetGame は新しいGetGameを作成します。
func NewGetGame(repo GameRepository) *GetGame {
	return &GetGame{repo: repo}
}

// Execute は指定IDのゲームを取得します。存在しない場合はNotFoundErrorをラップしたRepositoryErrorを返します。
func (uc *GetGame) Execute(ctx context.Context, id string) (result.Result[*model.Game, ApplicationError], error) {
	found, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return result.Result[*model.Game, ApplicationError]{}, err
	}
	if found.IsErr() {
		return result.Err[*model.Game, ApplicationError](newRepositoryError("Failed to retrieve game", found.UnwrapErr())), nil
	}
	return result.Ok[*model.Game, ApplicationError](found.Unwrap()), nil
}
