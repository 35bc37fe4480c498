package entity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/bingo-backend/internal/apperror"
)

const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
	StatusOver    = "over"

	MaxPlayers = 2
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Players       []*Player `json:"players,omitempty"`
	Turn          string    `json:"player_turn,omitempty"`
	CalledNumbers []int     `json:"called_numbers"`
	Winner        *Player   `json:"winner,omitempty"`

	mu sync.Mutex
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Status: StatusWaiting,
	}
}

// Lock - takes the game's exclusive-access lock. Every mutating operation on
// a game must run between Lock and Unlock; games never share locks.
func (that *Game) Lock() { that.mu.Lock() }

func (that *Game) Unlock() { that.mu.Unlock() }

// AddPlayer - seats a player in a waiting game.
func (that *Game) AddPlayer(player *Player) error {
	if len(that.Players) >= MaxPlayers {
		return apperror.ErrGameFull
	}

	if !that.IsWaiting() {
		return apperror.ErrGameAlreadyBegun
	}

	player.GameID = that.ID
	that.Players = append(that.Players, player)

	return nil
}

// Start - deals both players a fresh card and opens play.
// The creating player always moves first.
func (that *Game) Start() {
	for _, player := range that.Players {
		player.Card = NewCard()
		player.Card.ApplyCalled(that.CalledNumbers)
		player.Lines = player.Card.CompletedLines()
	}

	that.Status = StatusPlaying
	that.Turn = that.Players[0].ID
}

// CallNumber - records a called number for the turn holder, re-derives every
// player's marks and line counts from the history, and either advances the
// turn or finishes the game. Returns the winner, if any.
func (that *Game) CallNumber(playerID string, number int) (*Player, error) {
	if err := that.ConfirmPlayingState(); err != nil {
		return nil, err
	}

	if that.Turn != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	if number < MinNumber || number > MaxNumber {
		return nil, fmt.Errorf("%w: %d", apperror.ErrNumberOutOfRange, number)
	}

	if that.hasCalled(number) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrNumberCalled, number)
	}

	that.CalledNumbers = append(that.CalledNumbers, number)

	for _, player := range that.Players {
		player.Card.ApplyCalled(that.CalledNumbers)
		player.Lines = player.Card.CompletedLines()
	}

	// the caller is checked first, so a call that completes five lines for
	// both players declares the caller the winner
	caller := that.PlayerByID(playerID)
	opponent := that.Opponent(playerID)

	switch {
	case caller != nil && caller.Lines >= WinningLines:
		that.finish(caller)
		return caller, nil
	case opponent != nil && opponent.Lines >= WinningLines:
		that.finish(opponent)
		return opponent, nil
	}

	if opponent != nil {
		that.Turn = opponent.ID
	}

	return nil, nil
}

// ClaimBingo - validates a manual win claim against a fresh recount;
// the claim is never trusted as asserted.
func (that *Game) ClaimBingo(playerID string) (*Player, error) {
	if err := that.ConfirmPlayingState(); err != nil {
		return nil, err
	}

	claimant := that.PlayerByID(playerID)
	if claimant == nil {
		return nil, apperror.ErrNoActiveGames
	}

	claimant.Card.ApplyCalled(that.CalledNumbers)
	claimant.Lines = claimant.Card.CompletedLines()

	if claimant.Lines < WinningLines {
		return nil, fmt.Errorf("%w: %d of %d", apperror.ErrNotEnoughLines, claimant.Lines, WinningLines)
	}

	that.finish(claimant)

	return claimant, nil
}

// RemovePlayer - unseats a player. If exactly one player remains the game is
// over (an opponent-left outcome, not a win) and the remaining player is
// returned.
func (that *Game) RemovePlayer(playerID string) *Player {
	if that.PlayerByID(playerID) == nil {
		return nil
	}

	remaining := that.Players[:0]
	for _, player := range that.Players {
		if player.ID != playerID {
			remaining = append(remaining, player)
		}
	}
	that.Players = remaining

	that.Status = StatusOver
	that.Turn = ""

	if len(that.Players) == 1 {
		return that.Players[0]
	}

	return nil
}

func (that *Game) PlayerByID(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}
	return nil
}

func (that *Game) Opponent(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID != playerID {
			return player
		}
	}
	return nil
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsOver() bool {
	return that.Status == StatusOver
}

func (that *Game) ConfirmPlayingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsOver():
		return apperror.ErrGameFinished
	case that.IsPlaying():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) hasCalled(number int) bool {
	for _, called := range that.CalledNumbers {
		if called == number {
			return true
		}
	}
	return false
}

func (that *Game) finish(winner *Player) {
	that.Winner = winner
	that.Status = StatusOver
	that.Turn = ""
}
