package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

const BoardSize = 3

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// Mark - content of a single cell, or the side to move.
type Mark string

func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Move - a cell coordinate, row-major with (0,0) at the top left.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

func (that Move) inRange() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

type Board [BoardSize][BoardSize]Mark

var WinLines = [8][3]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// GameState - a board and the side to move. It is a value: every method works on a copy,
// so states can be handed around and explored without aliasing.
type GameState struct {
	Board Board `json:"board"`
	Turn  Mark  `json:"turn"`
}

// NewGameState - returns the initial position: an empty board with X to move.
func NewGameState() GameState {
	return GameState{Turn: PlayerX}
}

// FromBoard - builds an arbitrary position.
func FromBoard(board Board, turn Mark) GameState {
	return GameState{Board: board, Turn: turn}
}

func (that GameState) Reset() GameState {
	return NewGameState()
}

func (that GameState) Cell(row, col int) Mark {
	return that.Board[row][col]
}

// ApplyMove - places mark at (row, col) and passes the turn. On failure the receiver is returned as is.
func (that GameState) ApplyMove(row, col int, mark Mark) (GameState, error) {
	if err := that.validateMove(Move{Row: row, Col: col}, mark); err != nil {
		return that, fmt.Errorf("%w %d,%d: %w", apperror.ErrInvalidMove, row, col, err)
	}

	next := that
	next.Board[row][col] = mark
	next.Turn = mark.Opponent()

	return next, nil
}

func (that GameState) validateMove(move Move, mark Mark) error {
	if !move.inRange() {
		return apperror.ErrInvalidCell
	}

	if that.Outcome().IsTerminal() {
		return apperror.ErrGameFinished
	}

	if !mark.IsPlayer() || mark != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if that.Board[move.Row][move.Col] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// Outcome - derives the result from the board alone. A completed line wins even on a full board.
func (that GameState) Outcome() Outcome {
	if line, ok := that.WinningLine(); ok {
		if that.Board[line[0].Row][line[0].Col] == PlayerX {
			return XWins
		}
		return OWins
	}

	if that.EmptyCells() == 0 {
		return Draw
	}

	return InProgress
}

// WinningLine - returns the first line, in WinLines order, filled with the same mark.
func (that GameState) WinningLine() ([3]Move, bool) {
	for _, line := range WinLines {
		a := that.Board[line[0].Row][line[0].Col]
		b := that.Board[line[1].Row][line[1].Col]
		c := that.Board[line[2].Row][line[2].Col]
		if a != EmptyCell && a == b && b == c {
			return line, true
		}
	}

	return [3]Move{}, false
}

// LegalMoves - empty cells in row-major order.
func (that GameState) LegalMoves() []Move {
	moves := make([]Move, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that.Board[row][col] == EmptyCell {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}

	return moves
}

func (that GameState) EmptyCells() int {
	count := 0
	for row := range BoardSize {
		for col := range BoardSize {
			if that.Board[row][col] == EmptyCell {
				count++
			}
		}
	}

	return count
}
