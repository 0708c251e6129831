package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
	"github.com/stsysd/gameshelf/store"
)

// fakeRepository はメモリ上で動作するテスト用リポジトリです。
type fakeRepository struct {
	games     map[string]*model.Game
	order     []string
	saveCalls int
	saveErr   store.RepositoryError
	findErr   store.RepositoryError
	fatalErr  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{games: map[string]*model.Game{}}
}

func (f *fakeRepository) Save(_ context.Context, game *model.Game) result.Result[result.Void, store.RepositoryError] {
	f.saveCalls++
	if f.saveErr != nil {
		return result.Err[result.Void](f.saveErr)
	}
	if _, ok := f.games[game.ID()]; !ok {
		f.order = append(f.order, game.ID())
	}
	f.games[game.ID()] = game
	return result.OkVoid[store.RepositoryError]()
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (result.Result[*model.Game, store.RepositoryError], error) {
	if f.fatalErr != nil {
		return result.Result[*model.Game, store.RepositoryError]{}, f.fatalErr
	}
	if f.findErr != nil {
		return result.Err[*model.Game](f.findErr), nil
	}
	game, ok := f.games[id]
	if !ok {
		return result.Err[*model.Game, store.RepositoryError](store.NewNotFoundError(id)), nil
	}
	return result.Ok[*model.Game, store.RepositoryError](game), nil
}

func (f *fakeRepository) FindAll(_ context.Context) (result.Result[[]*model.Game, store.RepositoryError], error) {
	if f.fatalErr != nil {
		return result.Result[[]*model.Game, store.RepositoryError]{}, f.fatalErr
	}
	if f.findErr != nil {
		return result.Err[[]*model.Game](f.findErr), nil
	}
	games := make([]*model.Game, 0, len(f.order))
	for _, id := range f.order {
		games = append(games, f.games[id])
	}
	return result.Ok[[]*model.Game, store.RepositoryError](games), nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) result.Result[result.Void, store.RepositoryError] {
	if f.saveErr != nil {
		return result.Err[result.Void](f.saveErr)
	}
	delete(f.games, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return result.OkVoid[store.RepositoryError]()
}

func validDTO() AddGameDTO {
	purchased := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return AddGameDTO{
		ID:           "game-123",
		Title:        "The Legend of Zelda",
		Description:  "Classic adventure game",
		Platform:     "Nintendo Switch",
		Format:       "Physical",
		PurchaseDate: &purchased,
		Status:       "Owned",
	}
}

func TestAddGame(t *testing.T) {
	repo := newFakeRepository()
	uc := NewAddGame(repo)

	r := uc.Execute(context.Background(), validDTO())
	require.True(t, r.IsOk())
	require.Contains(t, repo.games, "game-123")
	assert.Equal(t, "The Legend of Zelda", repo.games["game-123"].Title())
}

func TestAddGameValidationError(t *testing.T) {
	repo := newFakeRepository()
	uc := NewAddGame(repo)

	dto := validDTO()
	dto.Format = "   "
	r := uc.Execute(context.Background(), dto)
	require.True(t, r.IsErr())

	appErr := r.UnwrapErr()
	assert.Equal(t, TypeValidation, appErr.Type())
	assert.Equal(t, "Format name is required", appErr.Error())

	var ve *ValidationError
	require.True(t, errors.As(appErr, &ve))
	assert.Equal(t, "format", ve.Field)
	fe, ok := ve.DomainError()
	require.True(t, ok)
	assert.Equal(t, model.FieldError{Field: "format", Message: "Format name is required"}, fe)

	// 検証エラーの場合はリポジトリを呼び出さないこと
	assert.Equal(t, 0, repo.saveCalls)
}

func TestAddGameRepositoryError(t *testing.T) {
	repo := newFakeRepository()
	repo.saveErr = store.NewQuotaExceededError()
	uc := NewAddGame(repo)

	r := uc.Execute(context.Background(), validDTO())
	require.True(t, r.IsErr())

	appErr := r.UnwrapErr()
	assert.Equal(t, TypeRepository, appErr.Type())
	assert.Equal(t, "Failed to save game: Storage quota exceeded", appErr.Error())
	assert.Equal(t, repo.saveErr, appErr.Metadata()["repositoryError"])

	var quota *store.QuotaExceededError
	assert.True(t, errors.As(appErr, &quota))
}

func TestGetGames(t *testing.T) {
	repo := newFakeRepository()
	add := NewAddGame(repo)
	for _, id := range []string{"b", "a"} {
		dto := validDTO()
		dto.ID = id
		require.True(t, add.Execute(context.Background(), dto).IsOk())
	}

	r, err := NewGetGames(repo).Execute(context.Background())
	require.NoError(t, err)
	require.True(t, r.IsOk())
	games := r.Unwrap()
	require.Len(t, games, 2)
	assert.Equal(t, "b", games[0].ID())
	assert.Equal(t, "a", games[1].ID())
}

func TestGetGamesErrors(t *testing.T) {
	t.Run("repository error", func(t *testing.T) {
		repo := newFakeRepository()
		repo.findErr = store.NewFindAllError(nil)

		r, err := NewGetGames(repo).Execute(context.Background())
		require.NoError(t, err)
		require.True(t, r.IsErr())
		assert.Equal(t, TypeRepository, r.UnwrapErr().Type())
		assert.Equal(t, "Failed to retrieve games: database findAll request failed", r.UnwrapErr().Error())
	})

	t.Run("corruption passes through", func(t *testing.T) {
		repo := newFakeRepository()
		repo.fatalErr = &store.CorruptRecordError{ID: "x", Field: "status", Reason: "bad"}

		_, err := NewGetGames(repo).Execute(context.Background())
		var corrupt *store.CorruptRecordError
		assert.True(t, errors.As(err, &corrupt))
	})
}

func TestGetGame(t *testing.T) {
	repo := newFakeRepository()
	require.True(t, NewAddGame(repo).Execute(context.Background(), validDTO()).IsOk())

	r, err := NewGetGame(repo).Execute(context.Background(), "game-123")
	require.NoError(t, err)
	require.True(t, r.IsOk())
	assert.Equal(t, "game-123", r.Unwrap().ID())

	missing, err := NewGetGame(repo).Execute(context.Background(), "missing-id")
	require.NoError(t, err)
	require.True(t, missing.IsErr())
	assert.Equal(t, TypeRepository, missing.UnwrapErr().Type())
	assert.True(t, errors.Is(missing.UnwrapErr(), store.ErrNotFound))
}

func TestDeleteGame(t *testing.T) {
	repo := newFakeRepository()
	require.True(t, NewAddGame(repo).Execute(context.Background(), validDTO()).IsOk())

	uc := NewDeleteGame(repo)
	require.True(t, uc.Execute(context.Background(), "game-123").IsOk())
	require.True(t, uc.Execute(context.Background(), "game-123").IsOk())
	assert.Empty(t, repo.games)

	repo.saveErr = store.NewDeleteError(nil)
	r := uc.Execute(context.Background(), "game-123")
	require.True(t, r.IsErr())
	assert.Equal(t, "Failed to delete game: database delete request failed", r.UnwrapErr().Error())
}
