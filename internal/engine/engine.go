package engine

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const (
	winScore  = 10
	drawScore = 0
)

// Result - the chosen move, its minimax value and how many positions were looked at below the root.
type Result struct {
	Move  entity.Move
	Score int
	Nodes int
}

// Engine - exhaustive minimax with alpha-beta pruning. O maximizes, X minimizes.
// It keeps no state between calls, so one Engine may serve many games at once.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// BestMove - returns the optimal move for the side to move in state.
func (that *Engine) BestMove(state entity.GameState) (entity.Move, error) {
	result, err := that.Search(state)
	if err != nil {
		return entity.Move{}, err
	}

	return result.Move, nil
}

// Search - like BestMove, but also reports the score and the number of visited nodes.
func (that *Engine) Search(state entity.GameState) (Result, error) {
	if outcome := state.Outcome(); outcome.IsTerminal() {
		return Result{}, fmt.Errorf("%w: game is over (%s)", apperror.ErrNoMovesAvailable, outcome)
	}

	if !state.Turn.IsPlayer() {
		return Result{}, fmt.Errorf("%w: nobody to move", apperror.ErrInvalidMove)
	}

	moves := state.LegalMoves()
	if len(moves) == 0 {
		return Result{}, apperror.ErrNoMovesAvailable
	}

	maximizing := state.Turn == entity.PlayerO
	alpha, beta := math.MinInt, math.MaxInt

	tree := &search{}
	best := Result{Score: worstScore(maximizing)}

	for _, move := range moves {
		score := tree.minimax(play(state, move), 0, alpha, beta)

		// ties keep the first move found in row-major order
		if (maximizing && score > best.Score) || (!maximizing && score < best.Score) {
			best.Move = move
			best.Score = score
		}

		if maximizing {
			alpha = max(alpha, score)
		} else {
			beta = min(beta, score)
		}
	}

	best.Nodes = tree.nodes

	return best, nil
}

type search struct {
	nodes int
}

// minimax - value of state, where depth is the number of plies played after the root move.
func (that *search) minimax(state entity.GameState, depth, alpha, beta int) int {
	that.nodes++

	if score, ok := evaluate(state, depth); ok {
		return score
	}

	if state.Turn == entity.PlayerO {
		best := math.MinInt
		for _, move := range state.LegalMoves() {
			score := that.minimax(play(state, move), depth+1, alpha, beta)
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, move := range state.LegalMoves() {
		score := that.minimax(play(state, move), depth+1, alpha, beta)
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}

// evaluate - scores a terminal position; ok is false while the game goes on.
func evaluate(state entity.GameState, depth int) (int, bool) {
	switch state.Outcome() {
	case entity.XWins:
		return -winScore + depth, true
	case entity.OWins:
		return winScore - depth, true
	case entity.Draw:
		return drawScore, true
	default:
		return 0, false
	}
}

// play - child position; state is a value, so siblings never share a board.
func play(state entity.GameState, move entity.Move) entity.GameState {
	state.Board[move.Row][move.Col] = state.Turn
	state.Turn = state.Turn.Opponent()

	return state
}

func worstScore(maximizing bool) int {
	if maximizing {
		return math.MinInt
	}
	return math.MaxInt
}
