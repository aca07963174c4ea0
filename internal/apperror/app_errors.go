package apperror

import "errors"

var (
	ErrOutOfPieces     = errors.New("no rings of that size left")
	ErrSlotOccupied    = errors.New("ring slot is already occupied")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrGameAlreadyOver = errors.New("game is already over")

	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFull         = errors.New("game already has two players")
	ErrAlreadyInGame    = errors.New("player is already in a game")
	ErrNoActiveGames    = errors.New("no active games")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
)
