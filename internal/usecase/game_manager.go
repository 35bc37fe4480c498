package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/bingo-backend/internal/apperror"
	"github.com/rocketscienceinc/bingo-backend/internal/entity"
	"github.com/rocketscienceinc/bingo-backend/internal/gameid"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// StartView - the personalized game-start notification for one player.
type StartView struct {
	PlayerID      string
	GameID        string
	FirstPlayerID string
	Card          entity.Card
	OpponentName  string
}

// TurnView - the personalized called-number notification for one player.
type TurnView struct {
	PlayerID      string
	MyLines       int
	OpponentLines int
}

type Winner struct {
	ID   string
	Name string
}

// TurnOutcome - everything the dispatcher needs to notify both players after
// a successful call or bingo claim. Winner is nil while the game continues.
type TurnOutcome struct {
	GameID        string
	Number        int
	CalledNumbers []int
	NextPlayerID  string
	Winner        *Winner
	Views         []TurnView
}

// DisconnectOutcome - the opponent-left notice owed to the remaining player.
type DisconnectOutcome struct {
	GameID            string
	RemainingPlayerID string
}

// GameManager - the session engine. It owns the registry of live games and
// serializes every mutating operation per game: repositories guard only their
// maps, each game guards its own state, and outcomes are snapshotted before
// the game lock is released so delivery happens outside the critical section.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	codes      gameid.Generator
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, codes gameid.Generator) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		codes:      codes,
	}
}

// CreateGame - opens a new waiting game seated by the creator and returns its
// code. Code collisions are resolved by regenerating until the insert lands.
func (that *GameManager) CreateGame(ctx context.Context, playerID, playerName string) (string, error) {
	log := that.logger.With("method", "CreateGame")

	if err := that.confirmUnseated(ctx, playerID); err != nil {
		return "", err
	}

	player := &entity.Player{ID: playerID, Name: defaultName(playerName, 1)}

	var game *entity.Game
	for {
		game = entity.NewGame(that.codes.NewCode())
		if err := game.AddPlayer(player); err != nil {
			return "", fmt.Errorf("failed to seat creator: %w", err)
		}

		err := that.gameRepo.Create(ctx, game)
		if err == nil {
			break
		}

		if !errors.Is(err, apperror.ErrGameAlreadyExists) {
			return "", fmt.Errorf("failed to register game: %w", err)
		}

		log.Debug("game code collision, regenerating", "gameID", game.ID)
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return "", fmt.Errorf("failed to save player: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "playerID", playerID)

	return game.ID, nil
}

// JoinGame - seats the second player, deals both cards and starts play.
// Returns a personalized start notification per player.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID, playerName string) ([]StartView, error) {
	log := that.logger.With("method", "JoinGame", "gameID", gameID)

	if err := that.confirmUnseated(ctx, playerID); err != nil {
		return nil, err
	}

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player := &entity.Player{ID: playerID, Name: defaultName(playerName, 2)}

	game.Lock()
	defer game.Unlock()

	if err = game.AddPlayer(player); err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	game.Start()

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	views := make([]StartView, 0, len(game.Players))
	for _, seat := range game.Players {
		views = append(views, StartView{
			PlayerID:      seat.ID,
			GameID:        game.ID,
			FirstPlayerID: game.Turn,
			Card:          *seat.Card,
			OpponentName:  game.Opponent(seat.ID).Name,
		})
	}

	log.Info("game started", "playerID", playerID)

	return views, nil
}

// CallNumber - plays one turn. gameID is optional; when present it must name
// a live game, which keeps stale codes honest after teardown.
func (that *GameManager) CallNumber(ctx context.Context, gameID, playerID string, number int) (*TurnOutcome, error) {
	log := that.logger.With("method", "CallNumber", "playerID", playerID)

	game, err := that.resolveGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	game.Lock()
	defer game.Unlock()

	winner, err := game.CallNumber(playerID, number)
	if err != nil {
		return nil, fmt.Errorf("failed to call number: %w", err)
	}

	outcome := that.snapshotTurn(game, number, winner)

	if winner != nil {
		that.teardown(ctx, game)
		log.Info("game won", "gameID", game.ID, "winnerID", winner.ID)
	}

	return outcome, nil
}

// ClaimBingo - validates a manual bingo claim with a fresh recount.
func (that *GameManager) ClaimBingo(ctx context.Context, gameID, playerID string) (*TurnOutcome, error) {
	log := that.logger.With("method", "ClaimBingo", "playerID", playerID)

	game, err := that.resolveGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	game.Lock()
	defer game.Unlock()

	winner, err := game.ClaimBingo(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bingo: %w", err)
	}

	outcome := that.snapshotTurn(game, 0, winner)

	that.teardown(ctx, game)
	log.Info("bingo claimed", "gameID", game.ID, "winnerID", winner.ID)

	return outcome, nil
}

// Disconnect - removes the player's seat and tears the game down. A no-op for
// connections that never sat anywhere, so it is safe on every close event.
func (that *GameManager) Disconnect(ctx context.Context, playerID string) (*DisconnectOutcome, error) {
	log := that.logger.With("method", "Disconnect", "playerID", playerID)

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil //nolint: nilerr // unknown connection, nothing to tear down
	}

	if err = that.playerRepo.DeleteByID(ctx, playerID); err != nil {
		return nil, fmt.Errorf("failed to delete player: %w", err)
	}

	if player.GameID == "" {
		return nil, nil
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, nil //nolint: nilerr // game already torn down
	}

	game.Lock()
	defer game.Unlock()

	remaining := game.RemovePlayer(playerID)
	that.teardown(ctx, game)

	if remaining == nil {
		log.Info("game cleaned up after disconnect", "gameID", game.ID)
		return nil, nil
	}

	log.Info("game ended after disconnect", "gameID", game.ID, "remainingID", remaining.ID)

	return &DisconnectOutcome{
		GameID:            game.ID,
		RemainingPlayerID: remaining.ID,
	}, nil
}

// resolveGame - finds the caller's game, honoring an explicitly supplied code.
func (that *GameManager) resolveGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	if gameID == "" {
		player, err := that.playerRepo.GetByID(ctx, playerID)
		if err != nil || player.GameID == "" {
			return nil, apperror.ErrNoActiveGames
		}
		gameID = player.GameID
	}

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// confirmUnseated - a connection holds at most one seat at a time.
func (that *GameManager) confirmUnseated(ctx context.Context, playerID string) error {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil //nolint: nilerr // no record means no seat
	}

	if player.GameID != "" {
		return fmt.Errorf("%w: already in game %s", apperror.ErrGameAlreadyExists, player.GameID)
	}

	return nil
}

// snapshotTurn - copies the outcome while the game lock is still held.
func (that *GameManager) snapshotTurn(game *entity.Game, number int, winner *entity.Player) *TurnOutcome {
	outcome := &TurnOutcome{
		GameID:        game.ID,
		Number:        number,
		CalledNumbers: append([]int(nil), game.CalledNumbers...),
		NextPlayerID:  game.Turn,
	}

	if winner != nil {
		outcome.Winner = &Winner{ID: winner.ID, Name: winner.Name}
	}

	for _, seat := range game.Players {
		view := TurnView{PlayerID: seat.ID, MyLines: seat.Lines}
		if opponent := game.Opponent(seat.ID); opponent != nil {
			view.OpponentLines = opponent.Lines
		}
		outcome.Views = append(outcome.Views, view)
	}

	return outcome
}

// teardown - drops the game from the registry and frees its seats. Callers
// hold the game lock; repository locks are independent so this never nests
// the other way around.
func (that *GameManager) teardown(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "teardown", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, seat := range game.Players {
		seat.GameID = ""
		if err := that.playerRepo.CreateOrUpdate(ctx, seat); err != nil {
			log.Error("failed to release player", "playerID", seat.ID, "error", err)
		}
	}
}

func defaultName(name string, seat int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", seat)
}
