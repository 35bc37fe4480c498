package repository

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/bingo-backend/internal/apperror"
	"github.com/rocketscienceinc/bingo-backend/internal/entity"
	"github.com/rocketscienceinc/bingo-backend/internal/repository/storage"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type inMemoryGame struct {
	store *storage.Memory
}

func NewGameRepository(store *storage.Memory) GameRepository {
	return &inMemoryGame{
		store: store,
	}
}

// Create - registers a game under its code. The code stays unique among live
// games; the caller regenerates on ErrGameAlreadyExists.
func (that *inMemoryGame) Create(_ context.Context, game *entity.Game) error {
	gameKey := "game:" + game.ID

	if ok := that.store.SetIfAbsent(gameKey, game); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	return nil
}

func (that *inMemoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	value, ok := that.store.Get(gameKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	existingGame, ok := value.(*entity.Game)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return existingGame, nil
}

func (that *inMemoryGame) DeleteByID(_ context.Context, id string) error {
	gameKey := "game:" + id

	that.store.Delete(gameKey)

	return nil
}
