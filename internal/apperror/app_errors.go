package apperror

import "errors"

var (
	ErrInvalidMove      = errors.New("invalid move")
	ErrNoMovesAvailable = errors.New("no moves available")

	ErrInvalidCell   = errors.New("invalid cell index")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotHumanMode  = errors.New("game has no human player")
	ErrNoActiveGames = errors.New("no active games")
)
