package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/bingo-backend/internal/entity"
	"github.com/rocketscienceinc/bingo-backend/internal/repository/storage"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type inMemoryPlayer struct {
	store *storage.Memory
}

func NewPlayerRepository(store *storage.Memory) PlayerRepository {
	return &inMemoryPlayer{
		store: store,
	}
}

func (that *inMemoryPlayer) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	playerKey := "player:" + player.ID

	that.store.Set(playerKey, player)

	return nil
}

func (that *inMemoryPlayer) GetByID(_ context.Context, id string) (*entity.Player, error) {
	playerKey := "player:" + id

	value, ok := that.store.Get(playerKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}

	existingPlayer, ok := value.(*entity.Player)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}

	return existingPlayer, nil
}

func (that *inMemoryPlayer) DeleteByID(_ context.Context, id string) error {
	playerKey := "player:" + id

	that.store.Delete(playerKey)

	return nil
}
