package usecase

import (
	"context"
	"time"

	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
)

// AddGameDTO はゲーム追加の入力値です。
type AddGameDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Platform     string     `json:"platform"`
	Format       string     `json:"format"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	Status       string     `json:"status"`
}

// AddGame はゲームをコレクションに追加するユースケースです。
type AddGame struct {
	repo GameRepository
}

// NewAddGame は新しいAddGameを作成します。
func NewAddGame(repo GameRepository) *AddGame {
	return &AddGame{repo: repo}
}

// Execute はGameを生成して保存します。検証に失敗した場合、リポジトリは呼び出されません。
func (uc *AddGame) Execute(ctx context.Context, dto AddGameDTO) result.Result[result.Void, ApplicationError] {
	gameResult := model.NewGame(model.GameProps{
		ID:           dto.ID,
		Title:        dto.Title,
		Description:  dto.Description,
		Platform:     dto.Platform,
		Format:       dto.Format,
		PurchaseDate: dto.PurchaseDate,
		Status:       dto.Status,
	})
	if gameResult.IsErr() {
		return result.Err[result.Void, ApplicationError](newValidationError(gameResult.UnwrapErr()))
	}

	saved := uc.repo.Save(ctx, gameResult.Unwrap())
	if saved.IsErr() {
		return result.Err[result.Void, ApplicationError](newRepositoryError("Failed to save game", saved.UnwrapErr()))
	}

	return result.OkVoid[ApplicationError]()
}
