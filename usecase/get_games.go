package usecase

import (
	"context"

	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
)

// GetGames はコレクション内のすべてのゲームを取得するユースケースです。
type GetGames struct {
	repo GameRepository
}

// NewGetGames は新しいGetGamesを作成します。
func NewGetGames(repo GameRepository) *GetGames {
	return &GetGames{repo: repo}
}

// Execute はすべてのゲームを取得します。
// ストレージ破損を示すエラーはResultに変換せずそのまま返します。
func (uc *GetGames) Execute(ctx context.Context) (result.Result[[]*model.Game, ApplicationError], error) {
	found, err := uc.repo.FindAll(ctx)
	if err != nil {
		return result.Result[[]*model.Game, ApplicationError]{}, err
	}
	if found.IsErr() {
		return result.Err[[]*model.Game, ApplicationError](newRepositoryError("Failed to retrieve games", found.UnwrapErr())), nil
	}
	return result.Ok[[]*model.Game, ApplicationError](found.Unwrap()), nil
}
