package usecase

import (
	"context"

	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
	"github.com/stsysd/gameshelf/store"
)

// GameRepository はユースケースが必要とするゲームの永続化操作です。
// 読み取り操作の error はストレージ破損など回復不能な失敗にのみ使われます。
type GameRepository interface {
	Save(ctx context.Context, game *model.Game) result.Result[result.Void, store.RepositoryError]
	FindByID(ctx context.Context, id string) (result.Result[*model.Game, store.RepositoryError], error)
	FindAll(ctx context.Context) (result.Result[[]*model.Game, store.RepositoryError], error)
	Delete(ctx context.Context, id string) result.Result[result.Void, store.RepositoryError]
}

var _ GameRepository = (*store.GameRepository)(nil)
