package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/rocketscienceinc/bingo-backend/internal/apperror"
	"github.com/rocketscienceinc/bingo-backend/internal/entity"
	"github.com/rocketscienceinc/bingo-backend/internal/repository"
	"github.com/rocketscienceinc/bingo-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator - hands out a scripted sequence of game codes.
type stubGenerator struct {
	codes []string
	index int
}

func (that *stubGenerator) NewCode() string {
	code := that.codes[that.index%len(that.codes)]
	that.index++
	return code
}

func newManager(t *testing.T, codes ...string) (context.Context, *GameManager, repository.GameRepository) {
	t.Helper()

	ctx, st := suite.New(t)

	playerRepo := repository.NewPlayerRepository(st.Storage)
	gameRepo := repository.NewGameRepository(st.Storage)
	manager := NewGameManager(st.Logger, playerRepo, gameRepo, &stubGenerator{codes: codes})

	return ctx, manager, gameRepo
}

func cardNumbers(card *entity.Card) []int {
	var numbers []int
	for row := 0; row < entity.CardSize; row++ {
		for col := 0; col < entity.CardSize; col++ {
			if !card.Cells[row][col].Free {
				numbers = append(numbers, card.Cells[row][col].Number)
			}
		}
	}
	return numbers
}

func TestGameManager_CreateGame(t *testing.T) {
	t.Run("Creates a waiting game and returns its code", func(t *testing.T) {
		// Given: a manager with a scripted code
		ctx, manager, gameRepo := newManager(t, "AB123")

		// When: a player creates a game
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")

		// Then: the game is registered under that code, still waiting
		require.NoError(t, err)
		assert.Equal(t, "AB123", gameID)

		game, err := gameRepo.GetByID(ctx, gameID)
		require.NoError(t, err)
		assert.True(t, game.IsWaiting())
		require.Len(t, game.Players, 1)
		assert.Equal(t, "Alice", game.Players[0].Name)
	})

	t.Run("Defaults the display name by seat", func(t *testing.T) {
		// Given: a manager
		ctx, manager, gameRepo := newManager(t, "AB123")

		// When: a player creates a game without a name
		gameID, err := manager.CreateGame(ctx, "conn-1", "")
		require.NoError(t, err)

		// Then: the seat gets a default name
		game, err := gameRepo.GetByID(ctx, gameID)
		require.NoError(t, err)
		assert.Equal(t, "Player 1", game.Players[0].Name)
	})

	t.Run("Regenerates the code on collision", func(t *testing.T) {
		// Given: the generator repeats a code that is already taken
		ctx, manager, _ := newManager(t, "AB123", "AB123", "XY999")

		_, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)

		// When: a second player creates a game
		gameID, err := manager.CreateGame(ctx, "conn-2", "Bob")

		// Then: the colliding code is skipped
		require.NoError(t, err)
		assert.Equal(t, "XY999", gameID)
	})

	t.Run("Rejects a creator who already holds a seat", func(t *testing.T) {
		// Given: a player already seated in a waiting game
		ctx, manager, _ := newManager(t, "AB123", "XY999")

		_, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)

		// When: the same connection creates again
		_, err = manager.CreateGame(ctx, "conn-1", "Alice")

		// Then: the request is rejected
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})
}

func TestGameManager_JoinGame(t *testing.T) {
	t.Run("Fails for an unknown code", func(t *testing.T) {
		ctx, manager, _ := newManager(t, "AB123")

		// When: joining a code that was never created
		_, err := manager.JoinGame(ctx, "ZZZZZ", "conn-2", "Bob")

		// Then: the session is not found
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Starts the game with personalized views", func(t *testing.T) {
		// Given: a waiting game created by Alice
		ctx, manager, gameRepo := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)

		// When: Bob joins with the code
		views, err := manager.JoinGame(ctx, gameID, "conn-2", "Bob")

		// Then: both players get their own card, the opponent's name, and the
		// creator as the first player
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, "conn-1", views[0].PlayerID)
		assert.Equal(t, "Bob", views[0].OpponentName)
		assert.Equal(t, "conn-2", views[1].PlayerID)
		assert.Equal(t, "Alice", views[1].OpponentName)

		for _, view := range views {
			assert.Equal(t, "conn-1", view.FirstPlayerID)
		}
		assert.NotEqual(t, cardNumbers(&views[0].Card), cardNumbers(&views[1].Card))

		game, err := gameRepo.GetByID(ctx, gameID)
		require.NoError(t, err)
		assert.True(t, game.IsPlaying())
	})

	t.Run("Rejects a third player", func(t *testing.T) {
		// Given: a started game
		ctx, manager, _ := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		// When: a third connection joins
		_, err = manager.JoinGame(ctx, gameID, "conn-3", "Carol")

		// Then: the game is full
		assert.ErrorIs(t, err, apperror.ErrGameFull)
	})

	t.Run("Rejects the creator joining their own game", func(t *testing.T) {
		// Given: a waiting game
		ctx, manager, _ := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)

		// When: the creator joins their own code
		_, err = manager.JoinGame(ctx, gameID, "conn-1", "Alice")

		// Then: the request is rejected
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})
}

func TestGameManager_CallNumber(t *testing.T) {
	startGame := func(t *testing.T) (context.Context, *GameManager, string) {
		t.Helper()

		ctx, manager, _ := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		return ctx, manager, gameID
	}

	t.Run("Fails for a connection with no seat", func(t *testing.T) {
		ctx, manager, _ := newManager(t, "AB123")

		// When: an unseated connection calls a number
		_, err := manager.CallNumber(ctx, "", "conn-9", 7)

		// Then: there is no active game for it
		assert.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})

	t.Run("Out-of-range call leaves the turn in place", func(t *testing.T) {
		// Given: a started game, creator to move
		ctx, manager, _ := startGame(t)

		// When: the creator calls an invalid number
		_, err := manager.CallNumber(ctx, "", "conn-1", 99)

		// Then: the call is rejected and the creator still holds the turn
		assert.ErrorIs(t, err, apperror.ErrNumberOutOfRange)

		outcome, err := manager.CallNumber(ctx, "", "conn-1", 7)
		require.NoError(t, err)
		assert.Equal(t, "conn-2", outcome.NextPlayerID)
	})

	t.Run("Rejects a call out of turn", func(t *testing.T) {
		ctx, manager, _ := startGame(t)

		// When: the joiner moves first
		_, err := manager.CallNumber(ctx, "", "conn-2", 7)

		// Then: the call is rejected
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Alternating calls eventually produce a winner and tear the game down", func(t *testing.T) {
		// Given: a started game
		ctx, manager, gameRepo := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		// When: the players alternate through the whole number domain
		caller := "conn-1"
		var winner *Winner
		for number := entity.MinNumber; number <= entity.MaxNumber; number++ {
			outcome, err := manager.CallNumber(ctx, "", caller, number)
			require.NoError(t, err)

			assert.Equal(t, number, outcome.Number)
			assert.Len(t, outcome.CalledNumbers, number)

			if outcome.Winner != nil {
				winner = outcome.Winner
				break
			}

			// the turn always moves to the player who did not call
			require.NotEqual(t, caller, outcome.NextPlayerID)
			caller = outcome.NextPlayerID
		}

		// Then: someone wins before the domain is exhausted, the game is gone
		// and both seats are free again
		require.NotNil(t, winner)

		_, err = gameRepo.GetByID(ctx, gameID)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)

		_, err = manager.CallNumber(ctx, gameID, "conn-1", 7)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)

		_, err = manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
	})

	t.Run("Serializes concurrent calls on one game", func(t *testing.T) {
		// Given: a started game, creator to move
		ctx, manager, _ := startGame(t)

		// When: the same player races two calls for the same number
		var wg sync.WaitGroup
		outcomes := make([]error, 2)

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, outcomes[i] = manager.CallNumber(ctx, "", "conn-1", 7)
			}(i)
		}
		wg.Wait()

		// Then: exactly one call lands
		successes := 0
		for _, err := range outcomes {
			if err == nil {
				successes++
			}
		}
		assert.Equal(t, 1, successes)
	})
}

func TestGameManager_ClaimBingo(t *testing.T) {
	t.Run("Rejects a premature claim", func(t *testing.T) {
		// Given: a started game with no calls yet
		ctx, manager, _ := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		// When: the creator claims bingo
		_, err = manager.ClaimBingo(ctx, "", "conn-1")

		// Then: the claim is rejected
		assert.ErrorIs(t, err, apperror.ErrNotEnoughLines)
	})

	t.Run("Confirms a claim backed by the history", func(t *testing.T) {
		// Given: a started game whose history covers the claimant's card
		ctx, manager, gameRepo := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		game, err := gameRepo.GetByID(ctx, gameID)
		require.NoError(t, err)
		game.CalledNumbers = cardNumbers(game.PlayerByID("conn-1").Card)

		// When: the creator claims bingo
		outcome, err := manager.ClaimBingo(ctx, "", "conn-1")

		// Then: the win is confirmed and the game is torn down
		require.NoError(t, err)
		require.NotNil(t, outcome.Winner)
		assert.Equal(t, "conn-1", outcome.Winner.ID)
		assert.Equal(t, "Alice", outcome.Winner.Name)

		_, err = gameRepo.GetByID(ctx, gameID)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_Disconnect(t *testing.T) {
	t.Run("Is a no-op for an unknown connection", func(t *testing.T) {
		ctx, manager, _ := newManager(t, "AB123")

		// When: a connection that never played disconnects
		outcome, err := manager.Disconnect(ctx, "conn-9")

		// Then: nothing happens
		require.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("Notifies the remaining player and removes the game", func(t *testing.T) {
		// Given: a started game
		ctx, manager, gameRepo := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)
		_, err = manager.JoinGame(ctx, gameID, "conn-2", "Bob")
		require.NoError(t, err)

		// When: the joiner disconnects mid-game
		outcome, err := manager.Disconnect(ctx, "conn-2")

		// Then: the creator is the remaining party and the code is dead
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, gameID, outcome.GameID)
		assert.Equal(t, "conn-1", outcome.RemainingPlayerID)

		_, err = gameRepo.GetByID(ctx, gameID)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)

		_, err = manager.CallNumber(ctx, gameID, "conn-1", 7)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Tears down a waiting game silently", func(t *testing.T) {
		// Given: a waiting game with only the creator
		ctx, manager, gameRepo := newManager(t, "AB123")
		gameID, err := manager.CreateGame(ctx, "conn-1", "Alice")
		require.NoError(t, err)

		// When: the creator disconnects
		outcome, err := manager.Disconnect(ctx, "conn-1")

		// Then: no notice is owed and the game is gone
		require.NoError(t, err)
		assert.Nil(t, outcome)

		_, err = gameRepo.GetByID(ctx, gameID)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
