package state

import (
	"context"
	"sync"

	"github.com/stsysd/gameshelf/model"
	"github.com/stsysd/gameshelf/result"
	"github.com/stsysd/gameshelf/usecase"
	"go.uber.org/zap"
)

// LoadErrorMessage is the user-facing message stored when loading games fails.
const LoadErrorMessage = "Unable to load games. Please try again."

// GamesLoader loads the whole collection.
type GamesLoader interface {
	Execute(ctx context.Context) (result.Result[[]*model.Game, usecase.ApplicationError], error)
}

var _ GamesLoader = (*usecase.GetGames)(nil)

// GamesListState is an immutable snapshot of the games store.
// Callers must not modify it.
type GamesListState struct {
	Games     []*model.Game `json:"-"`
	IsLoading bool          `json:"isLoading"`
	Error     *string       `json:"error"`
}

// GamesStore is an observable store for the games collection.
// The snapshot is rebuilt only on commit, and its Games slice is replaced
// only when the set of games actually changed.
type GamesStore struct {
	Observer

	loader GamesLoader
	logger *zap.Logger

	mu        sync.Mutex
	games     map[string]*model.Game
	order     []string
	isLoading bool
	err       *string
	snapshot  *GamesListState
}

// NewGamesStore creates a store backed by loader.
func NewGamesStore(loader GamesLoader, logger *zap.Logger) *GamesStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GamesStore{
		loader:   loader,
		logger:   logger,
		games:    map[string]*model.Game{},
		snapshot: &GamesListState{Games: []*model.Game{}},
	}
}

// GetGamesList returns the current snapshot. The same pointer is returned until the next commit.
func (s *GamesStore) GetGamesList() *GamesListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// FetchGames reloads the collection. If a fetch is already in flight it returns nil immediately.
// A non-nil error means storage is corrupted; the store still records the failure first.
func (s *GamesStore) FetchGames(ctx context.Context) error {
	s.mu.Lock()
	if s.isLoading {
		s.mu.Unlock()
		return nil
	}
	s.isLoading = true
	clear(s.games)
	s.order = nil
	s.err = nil
	s.commitLocked(false)
	s.mu.Unlock()
	s.Notify()

	loaded, err := s.loader.Execute(ctx)

	s.mu.Lock()
	s.isLoading = false
	switch {
	case err != nil:
		s.logger.Error("failed to load games", zap.Error(err))
		s.setErrorLocked()
		s.commitLocked(false)
	case loaded.IsErr():
		s.logger.Warn("failed to load games", zap.Error(loaded.UnwrapErr()))
		s.setErrorLocked()
		s.commitLocked(false)
	default:
		for _, g := range loaded.Unwrap() {
			if _, ok := s.games[g.ID()]; !ok {
				s.order = append(s.order, g.ID())
			}
			s.games[g.ID()] = g
		}
		s.commitLocked(true)
	}
	s.mu.Unlock()
	s.Notify()

	return err
}

func (s *GamesStore) setErrorLocked() {
	msg := LoadErrorMessage
	s.err = &msg
}

// commitLocked rebuilds the snapshot. gamesChanged must be true only when the map was modified.
func (s *GamesStore) commitLocked(gamesChanged bool) {
	games := s.snapshot.Games
	if gamesChanged {
		games = make([]*model.Game, 0, len(s.order))
		for _, id := range s.order {
			games = append(games, s.games[id])
		}
	}
	s.snapshot = &GamesListState{
		Games:     games,
		IsLoading: s.isLoading,
		Error:     s.err,
	}
}
