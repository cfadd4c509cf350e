package tictactoe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/engine"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type searchEngine interface {
	Search(state entity.GameState) (engine.Result, error)
}

type Options struct {
	Mode      entity.Mode
	HumanMark entity.Mark
	// MoveDelay - pause before every computer move, so a person can follow the game.
	MoveDelay time.Duration
}

// TurnResult - one applied move. State is the board right after the move, even when the
// controller has already started a fresh game because Outcome is terminal.
type TurnResult struct {
	Move    entity.Move      `json:"move"`
	Mark    entity.Mark      `json:"mark"`
	State   entity.GameState `json:"state"`
	Outcome entity.Outcome   `json:"outcome"`
}

// GameController - holds turn control for a single game: it takes human moves, asks the
// engine for computer moves and starts over once a game is decided.
type GameController struct {
	logger  *slog.Logger
	engine  searchEngine
	options Options

	state entity.GameState
}

func NewGameController(logger *slog.Logger, searchEngine searchEngine, options Options) *GameController {
	if !options.HumanMark.IsPlayer() {
		options.HumanMark = entity.PlayerX
	}

	return &GameController{
		logger:  logger.With("component", "game_controller", "mode", options.Mode),
		engine:  searchEngine,
		options: options,
		state:   entity.NewGameState(),
	}
}

// WithState - continues from a stored position instead of the initial board.
func (that *GameController) WithState(state entity.GameState) *GameController {
	that.state = state
	return that
}

func (that *GameController) State() entity.GameState {
	return that.state
}

func (that *GameController) Mode() entity.Mode {
	return that.options.Mode
}

func (that *GameController) HumanMark() entity.Mark {
	if that.options.Mode != entity.HumanVsComputer {
		return entity.EmptyCell
	}
	return that.options.HumanMark
}

func (that *GameController) Reset() entity.GameState {
	that.state = that.state.Reset()
	return that.state
}

// IsComputerTurn - true when the engine should move next.
func (that *GameController) IsComputerTurn() bool {
	if that.state.Outcome().IsTerminal() {
		return false
	}

	if that.options.Mode == entity.ComputerVsComputer {
		return true
	}

	return that.state.Turn != that.options.HumanMark
}

// HumanTurn - applies the human's move at (row, col).
func (that *GameController) HumanTurn(_ context.Context, row, col int) (TurnResult, error) {
	if that.options.Mode != entity.HumanVsComputer {
		return TurnResult{}, apperror.ErrNotHumanMode
	}

	return that.apply(entity.Move{Row: row, Col: col}, that.options.HumanMark)
}

// ComputerTurn - waits for the configured delay, then plays the engine's choice.
func (that *GameController) ComputerTurn(ctx context.Context) (TurnResult, error) {
	if !that.IsComputerTurn() {
		return TurnResult{}, fmt.Errorf("%w: computer", apperror.ErrNotYourTurn)
	}

	if err := wait(ctx, that.options.MoveDelay); err != nil {
		return TurnResult{}, fmt.Errorf("computer turn interrupted: %w", err)
	}

	result, err := that.engine.Search(that.state)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to search move: %w", err)
	}

	that.logger.Debug("engine chose move",
		"move", result.Move.String(), "score", result.Score, "nodes", result.Nodes)

	return that.apply(result.Move, that.state.Turn)
}

// Play - keeps making computer moves while it is the computer's turn. In ComputerVsComputer
// mode that is the whole game; otherwise it is the reply to a human move. onTurn may be nil.
func (that *GameController) Play(ctx context.Context, onTurn func(TurnResult)) ([]TurnResult, error) {
	var results []TurnResult

	for that.IsComputerTurn() {
		result, err := that.ComputerTurn(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, result)
		if onTurn != nil {
			onTurn(result)
		}

		if result.Outcome.IsTerminal() {
			break
		}
	}

	return results, nil
}

func (that *GameController) apply(move entity.Move, mark entity.Mark) (TurnResult, error) {
	log := that.logger.With("method", "apply", "mark", mark, "move", move.String())

	next, err := that.state.ApplyMove(move.Row, move.Col, mark)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to make turn: %w", err)
	}

	result := TurnResult{
		Move:    move,
		Mark:    mark,
		State:   next,
		Outcome: next.Outcome(),
	}

	log.Info("turn made")

	if result.Outcome.IsTerminal() {
		log.Info("game over", "outcome", result.Outcome.String())

		that.state = next.Reset()
		return result, nil
	}

	that.state = next

	return result, nil
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
