package apperror

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrGameAlreadyBegun = errors.New("game has already begun")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNumberOutOfRange = errors.New("number is out of range")
	ErrNumberCalled     = errors.New("number was already called")
	ErrNotEnoughLines   = errors.New("not enough completed lines for bingo")
	ErrNoActiveGames    = errors.New("no active games")

	ErrGameAlreadyExists = errors.New("game already exists")
)
